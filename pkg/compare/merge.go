// ABOUTME: Comparison view merging two versions' annotations
// ABOUTME: Active items first, then unseen comparison items, each tagged by source

package compare

import (
	"math"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Source tells which version a merged annotation came from
type Source string

const (
	SourceActive     Source = "active"
	SourceComparison Source = "comparison"
)

// Tagged is an annotation tagged with its source version
type Tagged struct {
	Annotation *annotation.Annotation `json:"annotation"`
	Source     Source                 `json:"source"`
}

// Input is what Merge needs from both versions
type Input struct {
	ActiveVisible []*annotation.Annotation // Active version annotations already visible at the playhead
	Comparison    []*annotation.Annotation // Full comparison version annotation set; nil when not comparing
	Media         annotation.MediaKind     // Media kind of the active version
	Playback      float64                  // Playback position in seconds
	Window        float64                  // Temporal visibility half-width in seconds
}

// Merge returns every visible active annotation tagged active, followed by the
// comparison annotations whose id is not already present, tagged comparison.
// On video a comparison annotation must carry a timestamp inside the window.
func Merge(in Input) []Tagged {
	out := make([]Tagged, 0, len(in.ActiveVisible)+len(in.Comparison))
	seen := make(map[string]struct{}, len(in.ActiveVisible))

	for _, a := range in.ActiveVisible {
		seen[a.ID] = struct{}{}
		out = append(out, Tagged{Annotation: a, Source: SourceActive})
	}

	for _, a := range in.Comparison {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		if in.Media == annotation.MediaVideo {
			if a.Timestamp == nil || math.Abs(*a.Timestamp-in.Playback) >= in.Window {
				continue
			}
		}
		out = append(out, Tagged{Annotation: a, Source: SourceComparison})
	}

	return out
}

// Counts returns how many merged items came from each source
func Counts(items []Tagged) (active, comparison int) {
	for _, t := range items {
		switch t.Source {
		case SourceActive:
			active++
		case SourceComparison:
			comparison++
		}
	}
	return active, comparison
}
