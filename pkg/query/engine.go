// ABOUTME: Visibility and query engine for annotation views
// ABOUTME: Temporal visibility, sidebar filtering, ordering and stable numbering

package query

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Engine computes the derived annotation views of a version
type Engine struct {
	window float64
	eval   *Evaluator

	numbered *annotation.Store
	revision uint64
	numbers  map[string]int
}

// NewEngine creates a query engine with the given visibility window in
// seconds; a non-positive window uses the default
func NewEngine(window float64) *Engine {
	if window <= 0 {
		window = DefaultVisibilityWindow
	}
	return &Engine{
		window: window,
		eval:   NewEvaluator(),
	}
}

// Window returns the temporal visibility half-width in seconds
func (e *Engine) Window() float64 {
	return e.window
}

// VisibleAt reports whether a video annotation is visible at playback
// position t. General comments are always visible.
func (e *Engine) VisibleAt(a *annotation.Annotation, t float64) bool {
	if a.Timestamp == nil {
		return true
	}
	return math.Abs(*a.Timestamp-t) < e.window
}

// Visible returns the annotations shown on the media at playback position t.
// Image media shows everything.
func (e *Engine) Visible(items []*annotation.Annotation, kind annotation.MediaKind, t float64) []*annotation.Annotation {
	if kind != annotation.MediaVideo {
		return slices.Clone(items)
	}
	out := make([]*annotation.Annotation, 0, len(items))
	for _, a := range items {
		if e.VisibleAt(a, t) {
			out = append(out, a)
		}
	}
	return out
}

// Apply runs the sidebar filter steps in order, then the optional
// expression, and returns the sorted, paginated result
func (e *Engine) Apply(items []*annotation.Annotation, f Filter) ([]*annotation.Annotation, error) {
	search := strings.ToLower(f.Search)

	out := make([]*annotation.Annotation, 0, len(items))
	for _, a := range items {
		if a.IsInternal && f.Viewer != annotation.RoleStaff {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Text), search) &&
			!strings.Contains(strings.ToLower(a.AuthorName), search) {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, a.CommentType) {
			continue
		}
		if len(f.Assignees) > 0 && (a.Assignee == nil || !slices.Contains(f.Assignees, *a.Assignee)) {
			continue
		}
		if len(f.Labels) > 0 && !slices.ContainsFunc(f.Labels, a.HasLabel) {
			continue
		}
		if f.InternalOnly && !a.IsInternal {
			continue
		}
		out = append(out, a)
	}

	if f.Expression != "" {
		if err := e.eval.Compile(f.Expression); err != nil {
			return nil, reviewerr.Wrap(reviewerr.InvalidInput, "invalid filter expression", err)
		}
		kept := out[:0]
		for _, a := range out {
			ok, err := e.eval.Match(f.Expression, a)
			if err != nil {
				return nil, reviewerr.Wrap(reviewerr.InvalidInput, fmt.Sprintf("filter expression failed on %s", a.ID), err)
			}
			if ok {
				kept = append(kept, a)
			}
		}
		out = kept
	}

	Sort(out)
	return applyPagination(out, f.Limit, f.Offset), nil
}

// Rows applies the filter and attaches stable numbers from store
func (e *Engine) Rows(store *annotation.Store, f Filter) ([]Row, error) {
	filtered, err := e.Apply(store.All(), f)
	if err != nil {
		return nil, err
	}

	numbers := e.Numbering(store)
	rows := make([]Row, len(filtered))
	for i, a := range filtered {
		rows[i] = Row{Annotation: a, Number: numbers[a.ID]}
	}
	return rows, nil
}

// Numbering returns the stable numbers of store. The result is cached and
// recomputed only when the store or its revision changes.
func (e *Engine) Numbering(store *annotation.Store) map[string]int {
	if e.numbered != store || e.revision != store.Revision() || e.numbers == nil {
		e.numbers = Number(store.All())
		e.numbered = store
		e.revision = store.Revision()
	}
	return e.numbers
}

// Number assigns 1..N to annotations with at least one region, in
// (timestamp, createdAt) order. General comments get no number.
func Number(items []*annotation.Annotation) map[string]int {
	anchored := make([]*annotation.Annotation, 0, len(items))
	for _, a := range items {
		if a.HasRegions() {
			anchored = append(anchored, a)
		}
	}
	Sort(anchored)

	numbers := make(map[string]int, len(anchored))
	for i, a := range anchored {
		numbers[a.ID] = i + 1
	}
	return numbers
}

// Sort orders annotations by timestamp (nil as 0), then creation time
func Sort(items []*annotation.Annotation) {
	slices.SortStableFunc(items, func(x, y *annotation.Annotation) int {
		if c := cmp.Compare(x.SortTime(), y.SortTime()); c != 0 {
			return c
		}
		return x.CreatedAt.Compare(y.CreatedAt)
	})
}

// applyPagination applies limit and offset to results
func applyPagination[T any](items []T, limit, offset int) []T {
	offset = max(offset, 0)
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return items[offset:end]
}
