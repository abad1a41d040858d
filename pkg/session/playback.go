// ABOUTME: Playback, selection, hover and filter transitions
// ABOUTME: Selecting a timed annotation on video seeks to its timestamp

package session

import (
	"math"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/query"
)

// SetDuration records the media duration reported by the player
func (s *Session) SetDuration(d float64) {
	if !finite(d) || d < 0 {
		d = 0
	}
	s.duration = d
}

// Seek moves the playback position, clamped to the known duration
func (s *Session) Seek(t float64) {
	if !finite(t) || t < 0 {
		t = 0
	}
	if s.duration > 0 && t > s.duration {
		t = s.duration
	}
	s.playback = t
}

// SetPlaying starts or pauses video playback; images never play
func (s *Session) SetPlaying(on bool) {
	s.playing = on && s.video()
}

// TogglePlay flips the playing state
func (s *Session) TogglePlay() {
	s.SetPlaying(!s.playing)
}

// Select selects an annotation by id ("" clears). On video, selecting a timed
// annotation seeks to it.
func (s *Session) Select(id string) {
	s.selected = id
	if id == "" {
		return
	}
	a, _, ok := s.history.FindAnnotation(id)
	if !ok {
		return
	}
	if a.Timestamp != nil && s.video() {
		s.Seek(*a.Timestamp)
	}
}

// Hover marks an annotation as hovered ("" clears)
func (s *Session) Hover(id string) {
	s.hovered = id
}

// Filter returns the sidebar filter
func (s *Session) Filter() query.Filter {
	return s.filter
}

// SetFilter replaces the sidebar filter. The viewer always follows the
// actor, and only staff may restrict to internal comments.
func (s *Session) SetFilter(f query.Filter) error {
	f.Viewer = s.actor.Role
	if f.Viewer != annotation.RoleStaff {
		f.InternalOnly = false
	}
	if f.Offset < 0 || f.Limit < 0 {
		return s.reject("filter", reviewerr.New(reviewerr.InvalidInput, "limit and offset must not be negative"))
	}
	if f.Expression != "" {
		if _, err := s.engine.Apply(nil, f); err != nil {
			return s.reject("filter", err)
		}
	}
	s.filter = f
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
