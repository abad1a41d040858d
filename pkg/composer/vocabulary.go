// ABOUTME: Review vocabulary: assignees, labels and label trigger keywords
// ABOUTME: Lookup helpers used by the composer shorthand parser

package composer

import (
	"fmt"
	"slices"
	"strings"
)

// LabelRule maps a label to the keywords that trigger it
type LabelRule struct {
	Label    string   `json:"label" mapstructure:"label"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
}

// Vocabulary is the known set of assignees, labels and keyword rules
type Vocabulary struct {
	Assignees []string    `json:"assignees" mapstructure:"assignees"`
	Labels    []string    `json:"labels" mapstructure:"labels"`
	Rules     []LabelRule `json:"rules" mapstructure:"rules"`
}

// DefaultVocabulary returns the stock review vocabulary
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Assignees: []string{"Alice (Client)", "Bob (Staff)", "Charlie (VFX)"},
		Labels:    []string{"Color", "Edit", "VFX", "Audio", "Legal", "General"},
		Rules: []LabelRule{
			{Label: "Color", Keywords: []string{"color", "grading", "contrast", "saturation", "hue", "brightness", "dark", "light", "tone", "exposure", "gamma"}},
			{Label: "Audio", Keywords: []string{"audio", "sound", "music", "volume", "sfx", "dialogue", "mix", "mute", "narration", "decibels"}},
			{Label: "Edit", Keywords: []string{"edit", "cut", "transition", "timing", "pacing", "crop", "zoom", "sequence", "shot", "trim"}},
			{Label: "VFX", Keywords: []string{"vfx", "effects", "compositing", "greenscreen", "cgi", "render", "tracking", "roto", "comp"}},
			{Label: "Legal", Keywords: []string{"legal", "logo", "clearance", "trademark", "copyright", "brand", "release", "chiron", "super"}},
		},
	}
}

// Validate checks that every rule targets a known label
func (v Vocabulary) Validate() error {
	for _, r := range v.Rules {
		if !slices.Contains(v.Labels, r.Label) {
			return fmt.Errorf("keyword rule targets unknown label %q", r.Label)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("keyword rule for %q has no keywords", r.Label)
		}
	}
	return nil
}

// KeywordLabels returns the labels whose keywords occur in lowered text, in
// rule order
func (v Vocabulary) KeywordLabels(lowered string) []string {
	var out []string
	for _, r := range v.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				out = append(out, r.Label)
				break
			}
		}
	}
	return out
}

// MatchAssignee returns the first assignee whose name contains token,
// case-insensitively
func (v Vocabulary) MatchAssignee(token string) (string, bool) {
	token = strings.ToLower(token)
	for _, a := range v.Assignees {
		if strings.Contains(strings.ToLower(a), token) {
			return a, true
		}
	}
	return "", false
}

// MatchLabel returns the label equal to token, case-insensitively
func (v Vocabulary) MatchLabel(token string) (string, bool) {
	for _, l := range v.Labels {
		if strings.EqualFold(l, token) {
			return l, true
		}
	}
	return "", false
}
