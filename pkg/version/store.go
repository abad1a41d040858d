// ABOUTME: Version history with active and comparison selection
// ABOUTME: Only the last version is latest and accepts annotation changes

package version

import (
	"fmt"
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// History is the ordered version sequence plus the active and comparison
// selection. The sequence is append-only.
type History struct {
	versions   []*Version
	active     int
	comparison *int
}

// NewHistory creates a history from existing versions in order. The last
// version becomes active; every earlier store is frozen.
func NewHistory(versions []*Version) (*History, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("version history needs at least one version")
	}

	seen := make(map[int]bool, len(versions))
	prev := 0
	for i, v := range versions {
		if v.Number <= prev {
			return nil, fmt.Errorf("version numbers must increase: V%d follows V%d", v.Number, prev)
		}
		if seen[v.Number] {
			return nil, fmt.Errorf("duplicate version number: %d", v.Number)
		}
		seen[v.Number] = true
		prev = v.Number

		if v.Annotations == nil {
			v.Annotations = annotation.NewStore(nil)
		}
		if i < len(versions)-1 {
			v.Annotations.Freeze()
		}
	}

	return &History{
		versions: versions,
		active:   len(versions) - 1,
	}, nil
}

// Len returns the number of versions
func (h *History) Len() int {
	return len(h.versions)
}

// ActiveIndex returns the index of the active version
func (h *History) ActiveIndex() int {
	return h.active
}

// Active returns the active version
func (h *History) Active() *Version {
	return h.versions[h.active]
}

// IsLatest reports whether the active version is the last in the sequence
func (h *History) IsLatest() bool {
	return h.active == len(h.versions)-1
}

// At returns the version at index i
func (h *History) At(i int) (*Version, error) {
	if i < 0 || i >= len(h.versions) {
		return nil, reviewerr.Newf(reviewerr.IndexRange, "version index %d out of range", i)
	}
	return h.versions[i], nil
}

// ListVersions returns all versions in sequence order
func (h *History) ListVersions() []*Version {
	out := make([]*Version, len(h.versions))
	copy(out, h.versions)
	return out
}

// GetLatestVersion returns the last version of the sequence
func (h *History) GetLatestVersion() *Version {
	return h.versions[len(h.versions)-1]
}

// GetVersion returns the version with the given number
func (h *History) GetVersion(number int) (*Version, int, error) {
	for i, v := range h.versions {
		if v.Number == number {
			return v, i, nil
		}
	}
	return nil, -1, fmt.Errorf("version not found: V%d", number)
}

// GetVersionAsOf returns the version that was latest at a specific time
func (h *History) GetVersionAsOf(asOf time.Time) (*Version, error) {
	var found *Version
	for _, v := range h.versions {
		if v.CreatedAt.After(asOf) {
			continue
		}
		if found == nil || !v.CreatedAt.Before(found.CreatedAt) {
			found = v
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no version found as of %s", asOf.Format(time.RFC3339))
	}
	return found, nil
}

// SwitchActive makes version i active and clears the comparison target
func (h *History) SwitchActive(i int) error {
	if i < 0 || i >= len(h.versions) {
		return reviewerr.Newf(reviewerr.IndexRange, "version index %d out of range", i)
	}
	h.active = i
	h.comparison = nil
	return nil
}

// Publish appends a new version, freezes the previous latest and makes the
// new version active
func (h *History) Publish(nv NewVersion) *Version {
	v := &Version{
		Number:       h.GetLatestVersion().Number + 1,
		Label:        nv.Label,
		MediaKind:    nv.MediaKind,
		MediaLocator: nv.MediaLocator,
		CreatedAt:    nv.CreatedAt,
		CreatedBy:    nv.CreatedBy,
		Annotations:  annotation.NewStore(nv.Annotations),
	}
	h.append(v)
	return v
}

// RestoreAsNew deep-copies version i into a new latest version labelled
// "Restored from V<n>" and makes it active
func (h *History) RestoreAsNew(i int, createdBy string, now time.Time) (*Version, error) {
	src, err := h.At(i)
	if err != nil {
		return nil, err
	}

	v := &Version{
		Number:       h.GetLatestVersion().Number + 1,
		Label:        fmt.Sprintf("Restored from V%d", src.Number),
		MediaKind:    src.MediaKind,
		MediaLocator: src.MediaLocator,
		CreatedAt:    now,
		CreatedBy:    createdBy,
		Annotations:  src.Annotations.Clone(),
	}
	h.append(v)
	return v, nil
}

// Comparison returns the comparison version, if one is selected
func (h *History) Comparison() (*Version, bool) {
	if h.comparison == nil {
		return nil, false
	}
	return h.versions[*h.comparison], true
}

// ComparisonIndex returns the comparison index, if one is selected
func (h *History) ComparisonIndex() (int, bool) {
	if h.comparison == nil {
		return 0, false
	}
	return *h.comparison, true
}

// SetComparison selects (or with nil clears) the comparison version. A
// version cannot be compared against itself.
func (h *History) SetComparison(i *int) error {
	if i == nil {
		h.comparison = nil
		return nil
	}
	if *i < 0 || *i >= len(h.versions) {
		return reviewerr.Newf(reviewerr.IndexRange, "version index %d out of range", *i)
	}
	if *i == h.active {
		return reviewerr.New(reviewerr.SelfComparison, "a version cannot be compared against itself")
	}
	idx := *i
	h.comparison = &idx
	return nil
}

// FindAnnotation looks an id up in the active version, then the comparison
// version
func (h *History) FindAnnotation(id string) (*annotation.Annotation, *Version, bool) {
	active := h.Active()
	if a, ok := active.Annotations.Get(id); ok {
		return a, active, true
	}
	if cmp, ok := h.Comparison(); ok {
		if a, ok := cmp.Annotations.Get(id); ok {
			return a, cmp, true
		}
	}
	return nil, nil, false
}

func (h *History) append(v *Version) {
	h.GetLatestVersion().Annotations.Freeze()
	h.versions = append(h.versions, v)
	h.active = len(h.versions) - 1
	h.comparison = nil
}
