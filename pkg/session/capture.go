// ABOUTME: Pointer capture and tool transitions of the review session
// ABOUTME: Routes pointer events through the capture gate into the pending draft

package session

import (
	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
)

// Tool returns the active capture tool
func (s *Session) Tool() region.Tool {
	return s.capture.Tool()
}

// SetTool changes the capture tool
func (s *Session) SetTool(name string) error {
	t, err := region.ParseTool(name)
	if err != nil {
		return s.reject("tool", reviewerr.Wrap(reviewerr.InvalidInput, "unknown tool", err))
	}
	s.capture.SetTool(t)
	return nil
}

// SetStroke sets the stroke color and base width; a non-positive width keeps
// the current one
func (s *Session) SetStroke(color string, width float64) {
	if color != "" {
		s.capture.SetColor(color)
	}
	if width > 0 {
		s.capture.SetBaseWidth(width)
	}
}

// CaptureEnabled reports whether a pointer-down would start a capture
func (s *Session) CaptureEnabled() bool {
	return s.gate().Check() == nil
}

func (s *Session) gate() region.Gate {
	return region.Gate{
		Tool:      s.capture.Tool(),
		Latest:    s.history.IsLatest(),
		Comparing: s.comparing(),
		Video:     s.video(),
		Pending:   len(s.draft.Regions),
	}
}

// PointerDown handles a pointer-down at normalized coordinates. The select
// tool clears the selection. Only a pending region group on video is
// reported; other refusals are silent.
func (s *Session) PointerDown(at region.Coord) error {
	if s.capture.Tool() == region.ToolSelect {
		s.selected = ""
		return nil
	}

	if err := s.gate().Check(); err != nil {
		if reviewerr.IsUserFacing(err) {
			return s.reject("capture", err)
		}
		s.log.Debug("capture ignored").Str("code", string(reviewerr.CodeOf(err))).Send()
		return nil
	}

	video := s.video()
	if video && s.playing {
		s.playing = false
	}

	if r, ok := s.capture.Begin(at, video); ok {
		s.draft.AddRegion(r, video, s.playback)
	}
	return nil
}

// PointerMove extends the stroke in progress
func (s *Session) PointerMove(at region.Coord) {
	s.capture.Move(at)
}

// PointerUp finalizes the stroke in progress
func (s *Session) PointerUp() {
	video := s.video()
	if r, ok := s.capture.End(video); ok {
		s.draft.AddRegion(r, video, s.playback)
	}
}
