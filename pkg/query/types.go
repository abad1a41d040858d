// ABOUTME: Sidebar filter types for the annotation query engine
// ABOUTME: Fluent builder for filter state and tagged result rows

package query

import (
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// DefaultVisibilityWindow is the temporal visibility half-width in seconds
const DefaultVisibilityWindow = 1.5

// Filter is the sidebar filter state. Steps are applied in field order.
type Filter struct {
	Viewer       annotation.Role          // Actor role; internal comments are hidden from clients
	Status       annotation.Status        // Status tab; empty matches every status
	Search       string                   // Case-insensitive substring of text or author name
	Types        []annotation.CommentType // Selected comment types
	Assignees    []string                 // Selected assignees
	Labels       []string                 // Selected labels
	InternalOnly bool                     // Staff toggle restricting to internal comments
	Expression   string                   // Optional CEL expression over the annotation "a"
	Limit        int                      // Maximum rows; 0 means unlimited
	Offset       int                      // Rows to skip
}

// Row is one numbered sidebar entry
type Row struct {
	Annotation *annotation.Annotation
	Number     int // Stable number; 0 for general comments
}

// FilterBuilder provides a fluent interface for building filters
type FilterBuilder struct {
	filter Filter
}

// NewFilterBuilder creates a builder for the given viewer with the Open tab selected
func NewFilterBuilder(viewer annotation.Role) *FilterBuilder {
	return &FilterBuilder{
		filter: Filter{
			Viewer: viewer,
			Status: annotation.StatusOpen,
		},
	}
}

// Status selects the status tab
func (fb *FilterBuilder) Status(s annotation.Status) *FilterBuilder {
	fb.filter.Status = s
	return fb
}

// Search sets the free-text query
func (fb *FilterBuilder) Search(q string) *FilterBuilder {
	fb.filter.Search = q
	return fb
}

// Types adds comment types to the type filter
func (fb *FilterBuilder) Types(types ...annotation.CommentType) *FilterBuilder {
	fb.filter.Types = append(fb.filter.Types, types...)
	return fb
}

// Assignees adds assignees to the assignee filter
func (fb *FilterBuilder) Assignees(names ...string) *FilterBuilder {
	fb.filter.Assignees = append(fb.filter.Assignees, names...)
	return fb
}

// Labels adds labels to the label filter
func (fb *FilterBuilder) Labels(labels ...string) *FilterBuilder {
	fb.filter.Labels = append(fb.filter.Labels, labels...)
	return fb
}

// InternalOnly toggles the internal-only restriction
func (fb *FilterBuilder) InternalOnly(on bool) *FilterBuilder {
	fb.filter.InternalOnly = on
	return fb
}

// Where sets a CEL expression applied after the sidebar steps
func (fb *FilterBuilder) Where(expr string) *FilterBuilder {
	fb.filter.Expression = expr
	return fb
}

// Limit sets the result limit
func (fb *FilterBuilder) Limit(limit int) *FilterBuilder {
	fb.filter.Limit = limit
	return fb
}

// Offset sets the result offset
func (fb *FilterBuilder) Offset(offset int) *FilterBuilder {
	fb.filter.Offset = offset
	return fb
}

// Build returns the constructed filter
func (fb *FilterBuilder) Build() Filter {
	return fb.filter
}
