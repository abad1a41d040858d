// ABOUTME: Annotation mutations of the review session
// ABOUTME: Update, toggle, delete, merge patch and undo on the active version

package session

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Update merges fields into an annotation of the active version
func (s *Session) Update(id string, f annotation.Fields) error {
	start := time.Now()
	return s.outcome("update", id, start, s.active().Annotations.Update(id, f))
}

// ToggleStatus flips an annotation between Open and Resolved
func (s *Session) ToggleStatus(id string) error {
	start := time.Now()
	return s.outcome("toggle", id, start, s.active().Annotations.ToggleStatus(id))
}

// PatchAnnotation applies a JSON merge patch to an annotation
func (s *Session) PatchAnnotation(id string, patch []byte) error {
	start := time.Now()
	return s.outcome("patch", id, start, s.active().Annotations.ApplyMergePatch(id, patch))
}

// Delete removes an annotation and clears the selection if it was selected
func (s *Session) Delete(id string) error {
	start := time.Now()
	err := s.active().Annotations.Delete(id)
	if err == nil {
		if s.selected == id {
			s.selected = ""
		}
		if s.hovered == id {
			s.hovered = ""
		}
	}
	return s.outcome("delete", id, start, err)
}

// UndoLast pops the most recent pending region if there is one. Otherwise
// it deletes the most recent committed annotation by the actor's role that
// is anchored to a region.
func (s *Session) UndoLast() error {
	if s.draft.PopRegion() {
		return nil
	}

	start := time.Now()
	if !s.history.IsLatest() {
		return s.outcome("undo", "", start, reviewerr.New(reviewerr.ReadOnly, "version is read-only"))
	}

	a, ok := s.active().Annotations.LastWithRegionsBy(s.actor.Role)
	if !ok {
		return s.outcome("undo", "", start, reviewerr.New(reviewerr.NotFound, "nothing to undo"))
	}
	id := a.ID
	err := s.active().Annotations.Delete(id)
	if err == nil && s.selected == id {
		s.selected = ""
	}
	return s.outcome("undo", id, start, err)
}
