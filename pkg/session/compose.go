// ABOUTME: Comment composer transitions of the review session
// ABOUTME: Text derivation, manual metadata, attachments, submit and cancel

package session

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/composer"
)

// SetCommentText replaces the composer text and re-derives its metadata
func (s *Session) SetCommentText(text string) {
	s.draft.Text = text
	composer.Derive(text, composer.FromDraft(&s.draft), s.vocab).ApplyTo(&s.draft)
}

// SetDraftType sets the comment type explicitly
func (s *Session) SetDraftType(t annotation.CommentType) {
	s.draft.Type = t
}

// SetDraftAssignee sets the assignee explicitly; "" clears it
func (s *Session) SetDraftAssignee(name string) {
	if name == "" {
		s.draft.Assignee = nil
		return
	}
	s.draft.Assignee = &name
}

// ToggleDraftLabel adds or removes a label from the draft
func (s *Session) ToggleDraftLabel(label string) {
	for i, l := range s.draft.Labels {
		if l == label {
			s.draft.Labels = append(s.draft.Labels[:i:i], s.draft.Labels[i+1:]...)
			return
		}
	}
	s.draft.Labels = annotation.AddLabel(s.draft.Labels, label)
}

// SetDraftInternal toggles the staff-only flag. Clients cannot post internal
// comments through the toggle.
func (s *Session) SetDraftInternal(on bool) {
	if s.actor.Role != annotation.RoleStaff {
		return
	}
	s.draft.Internal = on
}

// SetDueDate sets the draft due date; nil clears it
func (s *Session) SetDueDate(due *time.Time) {
	s.draft.DueDate = due
}

// AttachReference attaches a finalized reference file to the draft
func (s *Session) AttachReference(f annotation.ReferenceFile) error {
	if err := f.Validate(); err != nil {
		return s.reject("attach", err)
	}
	s.draft.Reference = &f
	return nil
}

// RemoveReference drops the draft attachment
func (s *Session) RemoveReference() {
	s.draft.Reference = nil
}

// Submit commits the draft as an annotation on the active version and selects
// it. Text is persisted with shorthand stripped.
func (s *Session) Submit() (*annotation.Annotation, error) {
	start := time.Now()

	text := composer.Strip(s.draft.Text)
	if text == "" {
		return nil, s.reject("submit", reviewerr.New(reviewerr.EmptyComment, "Comment cannot be empty."))
	}
	if s.comparing() {
		return nil, s.reject("submit", reviewerr.New(reviewerr.ComparisonActive,
			"Comments cannot be added while comparing versions."))
	}

	v := s.active()
	a, err := v.Annotations.CommitDraft(&s.draft, annotation.Commit{
		Author:   s.actor,
		Text:     text,
		Media:    v.MediaKind,
		Playback: s.playback,
		Now:      s.now(),
	})
	if err := s.outcome("submit", "", start, err); err != nil || a == nil {
		return nil, err
	}

	s.capture.Cancel()
	s.selected = a.ID
	return a, nil
}

// Cancel abandons the pending draft
func (s *Session) Cancel() {
	s.capture.Cancel()
	s.draft.Reset()
}
