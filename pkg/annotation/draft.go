// ABOUTME: Pending annotation draft held by the composer
// ABOUTME: Regions and metadata collected before submit or cancel

package annotation

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
)

// Draft is the transient, uncommitted state between the first region drawn
// and submit or cancel: pending regions plus in-progress composer metadata.
type Draft struct {
	Regions   []region.Region // Pending regions in drawing order
	Timestamp *float64        // Playback position captured at the first video region

	Text      string         // Raw composer text, shorthand included
	Type      CommentType    // Comment type
	Assignee  *string        // Assignee
	DueDate   *time.Time     // Due date
	Labels    []string       // Labels
	Reference *ReferenceFile // Attachment
	Internal  bool           // Staff-only flag
}

// NewDraft returns an empty draft
func NewDraft() Draft {
	return Draft{Type: TypeNote}
}

// HasRegions reports whether any region is pending
func (d Draft) HasRegions() bool {
	return len(d.Regions) > 0
}

// AddRegion appends a pending region. The first region of a video draft
// captures the playback position; later regions leave it unchanged.
func (d *Draft) AddRegion(r region.Region, video bool, playback float64) {
	if video && len(d.Regions) == 0 && d.Timestamp == nil {
		ts := playback
		d.Timestamp = &ts
	}
	d.Regions = append(d.Regions, r)
}

// PopRegion removes the most recent pending region. The captured timestamp is
// cleared when the draft runs out of regions.
func (d *Draft) PopRegion() bool {
	if len(d.Regions) == 0 {
		return false
	}
	d.Regions = d.Regions[:len(d.Regions)-1]
	if len(d.Regions) == 0 {
		d.Timestamp = nil
	}
	return true
}

// ClearRegions drops all pending regions and the captured timestamp
func (d *Draft) ClearRegions() {
	d.Regions = nil
	d.Timestamp = nil
}

// ResetComposer clears the composer fields
func (d *Draft) ResetComposer() {
	d.Text = ""
	d.Type = TypeNote
	d.Assignee = nil
	d.DueDate = nil
	d.Labels = nil
	d.Reference = nil
	d.Internal = false
}

// Reset clears the whole draft
func (d *Draft) Reset() {
	d.ClearRegions()
	d.ResetComposer()
}
