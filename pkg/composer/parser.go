// ABOUTME: Comment composer shorthand parser
// ABOUTME: Derives assignee, labels, type and internal flag from draft text

package composer

import (
	"regexp"
	"slices"
	"strings"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

var (
	mentionPattern   = regexp.MustCompile(`@(\w+)`)
	labelPattern     = regexp.MustCompile(`#(\w+)`)
	shorthandPattern = regexp.MustCompile(`(@\w+|#\w+|!|\?|//)`)
)

// Metadata is the structured state derived from composer text
type Metadata struct {
	Labels   []string               // Label set, insertion ordered
	Assignee *string                // Assignee
	Type     annotation.CommentType // Comment type
	Internal bool                   // Staff-only flag
}

// Derive re-evaluates text against the prior metadata. Detections only add:
// labels are never removed, and type and internal flags are never unset.
// The first @mention that matches an assignee overwrites the assignee.
func Derive(text string, prior Metadata, v Vocabulary) Metadata {
	out := Metadata{
		Labels:   slices.Clone(prior.Labels),
		Assignee: prior.Assignee,
		Type:     prior.Type,
		Internal: prior.Internal,
	}
	if out.Type == "" {
		out.Type = annotation.TypeNote
	}

	for _, l := range v.KeywordLabels(strings.ToLower(text)) {
		out.Labels = annotation.AddLabel(out.Labels, l)
	}

	if m := mentionPattern.FindStringSubmatch(text); m != nil {
		if name, ok := v.MatchAssignee(m[1]); ok {
			out.Assignee = &name
		}
	}

	if m := labelPattern.FindStringSubmatch(text); m != nil {
		if label, ok := v.MatchLabel(m[1]); ok {
			out.Labels = annotation.AddLabel(out.Labels, label)
		}
	}

	if strings.HasSuffix(text, "!") {
		out.Type = annotation.TypeBlocker
	}
	if strings.HasSuffix(text, "?") {
		out.Type = annotation.TypeQuestion
	}
	if strings.HasPrefix(text, "//") {
		out.Internal = true
	}

	return out
}

// Strip removes every shorthand token (@word, #word, !, ?, //) and trims
// the result
func Strip(text string) string {
	return strings.TrimSpace(shorthandPattern.ReplaceAllString(text, ""))
}

// FromDraft extracts the derivable metadata of a draft
func FromDraft(d *annotation.Draft) Metadata {
	return Metadata{
		Labels:   d.Labels,
		Assignee: d.Assignee,
		Type:     d.Type,
		Internal: d.Internal,
	}
}

// ApplyTo writes metadata back onto a draft
func (m Metadata) ApplyTo(d *annotation.Draft) {
	d.Labels = m.Labels
	d.Assignee = m.Assignee
	d.Type = m.Type
	d.Internal = m.Internal
}
