// ABOUTME: JSON merge patch support for annotation updates
// ABOUTME: Only assignee, due date, status and labels are patchable

package annotation

import (
	"encoding/json"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
)

// patchable is the JSON view of the fields a merge patch may touch
type patchable struct {
	Assignee *string  `json:"assignee"`
	DueDate  *string  `json:"dueDate"`
	Status   Status   `json:"status"`
	Labels   []string `json:"labels"`
}

var patchableKeys = map[string]bool{
	"assignee": true,
	"dueDate":  true,
	"status":   true,
	"labels":   true,
}

// ApplyMergePatch applies an RFC 7386 JSON merge patch to the mutable fields
// of an annotation (assignee, dueDate, status, labels). A null assignee or
// dueDate clears it.
func (s *Store) ApplyMergePatch(id string, patch []byte) error {
	a, err := s.mutable(id)
	if err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return reviewerr.Wrap(reviewerr.InvalidInput, "patch is not a JSON object", err)
	}
	for k := range keys {
		if !patchableKeys[k] {
			return reviewerr.Newf(reviewerr.InvalidInput, "field %q cannot be patched", k)
		}
	}

	current := patchable{
		Assignee: a.Assignee,
		Status:   a.Status,
		Labels:   a.Labels,
	}
	if current.Labels == nil {
		current.Labels = []string{}
	}
	if a.DueDate != nil {
		d := a.DueDate.Format(time.RFC3339)
		current.DueDate = &d
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode annotation %s: %w", id, err)
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return reviewerr.Wrap(reviewerr.InvalidInput, "invalid merge patch", err)
	}

	var next patchable
	if err := json.Unmarshal(merged, &next); err != nil {
		return reviewerr.Wrap(reviewerr.InvalidInput, "patch produced invalid fields", err)
	}

	status, err := ParseStatus(string(next.Status))
	if err != nil {
		return reviewerr.Wrap(reviewerr.InvalidInput, "invalid status", err)
	}

	fields := Fields{Status: &status, Labels: next.Labels}
	if fields.Labels == nil {
		fields.Labels = []string{}
	}

	assignee := ""
	if next.Assignee != nil {
		assignee = *next.Assignee
	}
	fields.Assignee = &assignee

	due := time.Time{}
	if next.DueDate != nil {
		due, err = ParseDueDate(*next.DueDate)
		if err != nil {
			return reviewerr.Wrap(reviewerr.InvalidInput, "invalid due date", err)
		}
	}
	fields.DueDate = &due

	return s.Update(id, fields)
}
