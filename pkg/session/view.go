// ABOUTME: Renderer-facing view of the review session
// ABOUTME: Combined tagged annotations, numbering, sidebar rows and markers

package session

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/compare"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/timeline"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

// VersionInfo summarizes a version for display
type VersionInfo struct {
	Index        int                  `json:"index"`
	Number       int                  `json:"number"`
	Label        string               `json:"label"`
	MediaKind    annotation.MediaKind `json:"mediaKind"`
	MediaLocator string               `json:"mediaLocator"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    string               `json:"createdBy"`
	Annotations  int                  `json:"annotations"`
	Latest       bool                 `json:"latest"`
	Active       bool                 `json:"active"`
	Comparison   bool                 `json:"comparison"`
}

// Item is one annotation drawn on the media
type Item struct {
	Annotation *annotation.Annotation `json:"annotation"`
	Source     compare.Source         `json:"source"`
	Number     int                    `json:"number,omitempty"`
	Badge      *region.Coord          `json:"badge,omitempty"` // Where the number badge is pinned; nil for general comments
	Selected   bool                   `json:"selected"`
	Hovered    bool                   `json:"hovered"`
}

// SidebarRow is one entry of the filtered comment list
type SidebarRow struct {
	Annotation *annotation.Annotation `json:"annotation"`
	Number     int                    `json:"number,omitempty"`
	Selected   bool                   `json:"selected"`
}

// DraftView is the pending draft as shown by the composer
type DraftView struct {
	Regions   []region.Region           `json:"regions"`
	Timestamp *float64                  `json:"timestamp,omitempty"`
	Drawing   []region.Coord            `json:"drawing,omitempty"`
	Text      string                    `json:"text"`
	Type      annotation.CommentType    `json:"type"`
	Assignee  *string                   `json:"assignee,omitempty"`
	DueDate   *time.Time                `json:"dueDate,omitempty"`
	Labels    []string                  `json:"labels"`
	Reference *annotation.ReferenceFile `json:"reference,omitempty"`
	Internal  bool                      `json:"internal"`
}

// Frame is everything the renderer needs for one frame
type Frame struct {
	Actor          annotation.Actor  `json:"actor"`
	Active         VersionInfo       `json:"active"`
	Comparison     *VersionInfo      `json:"comparison,omitempty"`
	Tool           region.Tool       `json:"tool"`
	CaptureEnabled bool              `json:"captureEnabled"`
	Playback       float64           `json:"playback"`
	Playing        bool              `json:"playing"`
	Duration       float64           `json:"duration"`
	Items          []Item            `json:"items"`
	Sidebar        []SidebarRow      `json:"sidebar"`
	Markers        []timeline.Marker `json:"markers"`
	Draft          DraftView         `json:"draft"`
	Thumbnails     int               `json:"thumbnails"`
}

// Frame computes the derived view of the current state
func (s *Session) Frame() (Frame, error) {
	start := time.Now()
	defer func() { s.metrics.RecordView("frame", time.Since(start)) }()

	sidebar, err := s.Sidebar()
	if err != nil {
		return Frame{}, err
	}

	f := Frame{
		Actor:          s.actor,
		Active:         s.info(s.history.ActiveIndex()),
		Tool:           s.capture.Tool(),
		CaptureEnabled: s.CaptureEnabled(),
		Playback:       s.playback,
		Playing:        s.playing,
		Duration:       s.duration,
		Items:          s.Items(),
		Sidebar:        sidebar,
		Markers:        s.Markers(),
		Draft:          s.draftView(),
		Thumbnails:     len(s.thumbs.Frames()),
	}
	if i, ok := s.history.ComparisonIndex(); ok {
		info := s.info(i)
		f.Comparison = &info
	}
	return f, nil
}

// Items returns the annotations drawn on the media: visible active items,
// then comparison items, each with numbering and selection flags
func (s *Session) Items() []Item {
	v := s.active()
	numbers := s.engine.Numbering(v.Annotations)
	visible := s.engine.Visible(s.visibleToActor(v.Annotations.All()), v.MediaKind, s.playback)

	in := compare.Input{
		ActiveVisible: visible,
		Media:         v.MediaKind,
		Playback:      s.playback,
		Window:        s.engine.Window(),
	}
	if cmp, ok := s.history.Comparison(); ok {
		in.Comparison = s.visibleToActor(cmp.Annotations.All())
	}

	merged := compare.Merge(in)
	items := make([]Item, len(merged))
	for i, t := range merged {
		item := Item{
			Annotation: t.Annotation,
			Source:     t.Source,
			Selected:   t.Annotation.ID == s.selected,
			Hovered:    t.Annotation.ID == s.hovered,
		}
		if t.Source == compare.SourceActive {
			item.Number = numbers[t.Annotation.ID]
		}
		if len(t.Annotation.Regions) > 0 {
			if c, ok := t.Annotation.Regions[0].Anchor(); ok {
				item.Badge = &c
			}
		}
		items[i] = item
	}
	return items
}

// Sidebar returns the filtered, sorted and numbered comment list
func (s *Session) Sidebar() ([]SidebarRow, error) {
	rows, err := s.engine.Rows(s.active().Annotations, s.filter)
	if err != nil {
		return nil, err
	}
	out := make([]SidebarRow, len(rows))
	for i, r := range rows {
		out[i] = SidebarRow{
			Annotation: r.Annotation,
			Number:     r.Number,
			Selected:   r.Annotation.ID == s.selected,
		}
	}
	return out, nil
}

// Markers returns the timeline markers of the active version
func (s *Session) Markers() []timeline.Marker {
	v := s.active()
	if !v.IsVideo() {
		return nil
	}
	return timeline.Markers(
		s.visibleToActor(v.Annotations.All()),
		s.engine.Numbering(v.Annotations),
		s.duration,
		timeline.Selection{Selected: s.selected, Hovered: s.hovered},
	)
}

// Versions summarizes every version in the history
func (s *Session) Versions() []VersionInfo {
	out := make([]VersionInfo, s.history.Len())
	for i := range out {
		out[i] = s.info(i)
	}
	return out
}

func (s *Session) info(i int) VersionInfo {
	v, _ := s.history.At(i)
	cmp, comparing := s.history.ComparisonIndex()
	return versionInfo(v, i, VersionInfo{
		Latest:     i == s.history.Len()-1,
		Active:     i == s.history.ActiveIndex(),
		Comparison: comparing && cmp == i,
	})
}

func versionInfo(v *version.Version, i int, flags VersionInfo) VersionInfo {
	flags.Index = i
	flags.Number = v.Number
	flags.Label = v.Label
	flags.MediaKind = v.MediaKind
	flags.MediaLocator = v.MediaLocator
	flags.CreatedAt = v.CreatedAt
	flags.CreatedBy = v.CreatedBy
	flags.Annotations = v.Annotations.Len()
	return flags
}

// visibleToActor hides internal comments from non-staff actors
func (s *Session) visibleToActor(items []*annotation.Annotation) []*annotation.Annotation {
	if s.actor.Role == annotation.RoleStaff {
		return items
	}
	out := items[:0:0]
	for _, a := range items {
		if !a.IsInternal {
			out = append(out, a)
		}
	}
	return out
}

func (s *Session) draftView() DraftView {
	d := s.draft
	labels := d.Labels
	if labels == nil {
		labels = []string{}
	}
	return DraftView{
		Regions:   region.CloneAll(d.Regions),
		Timestamp: d.Timestamp,
		Drawing:   s.capture.CurrentPath(),
		Text:      d.Text,
		Type:      d.Type,
		Assignee:  d.Assignee,
		DueDate:   d.DueDate,
		Labels:    labels,
		Reference: d.Reference,
		Internal:  d.Internal,
	}
}
