// ABOUTME: Per-version annotation store
// ABOUTME: Create, update, toggle, delete and the pending-to-committed transition

package annotation

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
)

// Store is the authoritative annotation collection of one version.
// A frozen store rejects every mutation.
type Store struct {
	items    []*Annotation
	frozen   bool
	revision uint64
	newID    func() string
}

// Fields is a partial update. Nil fields are left unchanged.
type Fields struct {
	Assignee *string    // New assignee; "" clears
	DueDate  *time.Time // New due date; zero time clears
	Status   *Status    // New status
	Labels   []string   // Replacement label set when non-nil
}

// Commit carries what the store needs besides the draft to mint an annotation
type Commit struct {
	Author   Actor     // Submitting actor
	Text     string    // Comment text with shorthand stripped
	Media    MediaKind // Media kind of the owning version
	Playback float64   // Live playback position, used for general video comments
	Now      time.Time // Creation time
}

// NewStore creates a store owning the given annotations
func NewStore(items []*Annotation) *Store {
	return &Store{
		items: slices.Clone(items),
		newID: uuid.NewString,
	}
}

// Freeze makes the store read-only
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether the store is read-only
func (s *Store) Frozen() bool {
	return s.frozen
}

// Revision increments on every change to the annotation set
func (s *Store) Revision() uint64 {
	return s.revision
}

// Len returns the number of annotations
func (s *Store) Len() int {
	return len(s.items)
}

// All returns the annotations in insertion order. Callers must not mutate
// the returned annotations; use the store operations instead.
func (s *Store) All() []*Annotation {
	return slices.Clone(s.items)
}

// Get returns the annotation with the given id
func (s *Store) Get(id string) (*Annotation, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.items[i], true
}

// Add appends a fully formed annotation
func (s *Store) Add(a *Annotation) error {
	if s.frozen {
		return reviewerr.New(reviewerr.ReadOnly, "version is read-only")
	}
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.Status == "" {
		a.Status = StatusOpen
	}
	if a.CommentType == "" {
		a.CommentType = TypeNote
	}
	s.items = append(s.items, a)
	s.revision++
	return nil
}

// CommitDraft turns the pending draft into a persisted annotation and clears
// the draft. Drafts with regions keep their captured timestamp; general video
// comments are anchored at the live playback position.
func (s *Store) CommitDraft(d *Draft, c Commit) (*Annotation, error) {
	if s.frozen {
		return nil, reviewerr.New(reviewerr.ReadOnly, "version is read-only")
	}

	a := &Annotation{
		ID:            s.newID(),
		AuthorRole:    c.Author.Role,
		AuthorName:    c.Author.Name,
		Text:          c.Text,
		CreatedAt:     c.Now,
		Regions:       region.CloneAll(d.Regions),
		CommentType:   d.Type,
		Status:        StatusOpen,
		Assignee:      d.Assignee,
		DueDate:       d.DueDate,
		Labels:        slices.Clone(d.Labels),
		ReferenceFile: d.Reference,
		IsInternal:    d.Internal,
	}
	if a.Regions == nil {
		a.Regions = []region.Region{}
	}
	if a.Labels == nil {
		a.Labels = []string{}
	}

	if c.Media == MediaVideo {
		if d.HasRegions() && d.Timestamp != nil {
			ts := *d.Timestamp
			a.Timestamp = &ts
		} else {
			ts := c.Playback
			a.Timestamp = &ts
		}
	}

	if err := s.Add(a); err != nil {
		return nil, err
	}
	d.Reset()
	return a, nil
}

// Update merges fields into an annotation in place
func (s *Store) Update(id string, f Fields) error {
	a, err := s.mutable(id)
	if err != nil {
		return err
	}

	if f.Assignee != nil {
		if *f.Assignee == "" {
			a.Assignee = nil
		} else {
			as := *f.Assignee
			a.Assignee = &as
		}
	}
	if f.DueDate != nil {
		if f.DueDate.IsZero() {
			a.DueDate = nil
		} else {
			d := *f.DueDate
			a.DueDate = &d
		}
	}
	if f.Status != nil {
		st, err := ParseStatus(string(*f.Status))
		if err != nil {
			return reviewerr.Wrap(reviewerr.InvalidInput, "invalid status", err)
		}
		a.Status = st
	}
	if f.Labels != nil {
		labels := make([]string, 0, len(f.Labels))
		for _, l := range f.Labels {
			labels = AddLabel(labels, l)
		}
		a.Labels = labels
	}

	s.revision++
	return nil
}

// ToggleStatus flips an annotation between Open and Resolved
func (s *Store) ToggleStatus(id string) error {
	a, err := s.mutable(id)
	if err != nil {
		return err
	}
	a.Status = a.Status.Toggled()
	s.revision++
	return nil
}

// Delete removes an annotation by id
func (s *Store) Delete(id string) error {
	if _, err := s.mutable(id); err != nil {
		return err
	}
	s.items = slices.DeleteFunc(s.items, func(a *Annotation) bool {
		return a.ID == id
	})
	s.revision++
	return nil
}

// LastWithRegionsBy scans backwards for the most recent annotation authored by
// role that is anchored to at least one region.
func (s *Store) LastWithRegionsBy(role Role) (*Annotation, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		a := s.items[i]
		if a.AuthorRole == role && a.HasRegions() {
			return a, true
		}
	}
	return nil, false
}

// Clone returns a mutable deep copy. Annotation and region ids are kept so the
// copy can be compared against its source.
func (s *Store) Clone() *Store {
	items := make([]*Annotation, len(s.items))
	for i, a := range s.items {
		items[i] = a.Clone()
	}
	return &Store{
		items: items,
		newID: s.newID,
	}
}

func (s *Store) mutable(id string) (*Annotation, error) {
	if s.frozen {
		return nil, reviewerr.New(reviewerr.ReadOnly, "version is read-only")
	}
	i := s.index(id)
	if i < 0 {
		return nil, reviewerr.Newf(reviewerr.NotFound, "annotation not found: %s", id)
	}
	return s.items[i], nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(a *Annotation) bool {
		return a.ID == id
	})
}
