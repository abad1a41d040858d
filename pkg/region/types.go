// ABOUTME: Region data model for drawn paths and placed points
// ABOUTME: Coordinates are percentages of the media frame (0-100)

package region

import (
	"fmt"
)

// Kind tags the region variant
type Kind string

const (
	KindDrawing Kind = "drawing"
	KindPoint   Kind = "point"
)

// Coord is a position in percentage-of-frame coordinates
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is either a drawing (Path, Color, StrokeWidth) or a point (Point).
// Regions are immutable once attached to a committed annotation.
type Region struct {
	ID          string  `json:"id"`                    // Unique region identifier
	Kind        Kind    `json:"type"`                  // Variant tag
	Path        []Coord `json:"pathData,omitempty"`    // Drawing: ordered path points
	Color       string  `json:"color,omitempty"`       // Drawing: stroke color
	StrokeWidth float64 `json:"strokeWidth,omitempty"` // Drawing: stroke width
	Point       *Coord  `json:"point,omitempty"`       // Point: placed position
}

// NewDrawing creates a drawing region
func NewDrawing(id string, path []Coord, color string, strokeWidth float64) Region {
	p := make([]Coord, len(path))
	copy(p, path)
	return Region{
		ID:          id,
		Kind:        KindDrawing,
		Path:        p,
		Color:       color,
		StrokeWidth: strokeWidth,
	}
}

// NewPoint creates a point region
func NewPoint(id string, at Coord) Region {
	return Region{
		ID:    id,
		Kind:  KindPoint,
		Point: &at,
	}
}

// Validate checks that the variant fields match the kind
func (r Region) Validate() error {
	switch r.Kind {
	case KindDrawing:
		if len(r.Path) < 2 {
			return fmt.Errorf("drawing region %s has %d points, need at least 2", r.ID, len(r.Path))
		}
		return nil
	case KindPoint:
		if r.Point == nil {
			return fmt.Errorf("point region %s has no position", r.ID)
		}
		return nil
	default:
		return fmt.Errorf("region %s has unknown kind %q", r.ID, r.Kind)
	}
}

// Anchor returns the position a renderer pins labels to: the point itself,
// or the first vertex of a drawing.
func (r Region) Anchor() (Coord, bool) {
	switch r.Kind {
	case KindPoint:
		if r.Point == nil {
			return Coord{}, false
		}
		return *r.Point, true
	case KindDrawing:
		if len(r.Path) == 0 {
			return Coord{}, false
		}
		return r.Path[0], true
	default:
		return Coord{}, false
	}
}

// Clone returns a deep copy
func (r Region) Clone() Region {
	out := r
	if r.Path != nil {
		out.Path = make([]Coord, len(r.Path))
		copy(out.Path, r.Path)
	}
	if r.Point != nil {
		p := *r.Point
		out.Point = &p
	}
	return out
}

// CloneAll deep-copies a region slice
func CloneAll(regions []Region) []Region {
	if regions == nil {
		return nil
	}
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = r.Clone()
	}
	return out
}
