// ABOUTME: Timeline correlation between annotation timestamps and playback
// ABOUTME: Marker placement and hover-to-thumbnail mapping

package timeline

import (
	"fmt"
	"math"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Marker is one annotation marker on the video timeline
type Marker struct {
	ID         string          `json:"id"`
	Position   float64         `json:"position"` // Fraction of the duration, 0..1
	Number     int             `json:"number"`   // Stable number; 0 renders as "-"
	AuthorRole annotation.Role `json:"authorRole"`
	Title      string          `json:"title"`
	Selected   bool            `json:"selected"`
	Hovered    bool            `json:"hovered"`
}

// Position maps a timestamp to a fraction of the timeline
func Position(ts, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp(ts / duration)
}

// HoverFraction maps a pointer offset inside the timeline to a fraction
func HoverFraction(offset, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return clamp(offset / width)
}

// ThumbnailIndex estimates which of count thumbnails covers a hover fraction.
// It returns -1 when there are no thumbnails.
func ThumbnailIndex(fraction float64, count int) int {
	if count <= 0 {
		return -1
	}
	i := int(math.Floor(clamp(fraction) * float64(count)))
	return min(i, count-1)
}

// FormatTimestamp renders seconds as mm:ss
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", (total/60)%60, total%60)
}

// Selection carries the ids the renderer highlights
type Selection struct {
	Selected string
	Hovered  string
}

// Markers places every annotation with a timestamp on a timeline of the
// given duration. Nothing is placed until the duration is known.
func Markers(items []*annotation.Annotation, numbers map[string]int, duration float64, sel Selection) []Marker {
	if duration <= 0 {
		return nil
	}

	out := make([]Marker, 0, len(items))
	for _, a := range items {
		if a.Timestamp == nil {
			continue
		}
		out = append(out, Marker{
			ID:         a.ID,
			Position:   Position(*a.Timestamp, duration),
			Number:     numbers[a.ID],
			AuthorRole: a.AuthorRole,
			Title:      markerTitle(a),
			Selected:   a.ID == sel.Selected,
			Hovered:    a.ID == sel.Hovered,
		})
	}
	return out
}

func markerTitle(a *annotation.Annotation) string {
	text := a.Text
	if r := []rune(text); len(r) > 50 {
		text = string(r[:50]) + "..."
	}
	return fmt.Sprintf("%s @ %s: %q", a.AuthorName, FormatTimestamp(*a.Timestamp), text)
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
