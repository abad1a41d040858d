// ABOUTME: Pointer capture turning pointer events into regions
// ABOUTME: Handles pen, highlighter and comment tools plus capture gating

package region

import (
	"fmt"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
)

// Tool is the active capture tool
type Tool string

const (
	ToolSelect      Tool = "select"
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolComment     Tool = "comment"
)

// HighlighterFactor scales the base stroke width for the highlighter
const HighlighterFactor = 3

// ParseTool parses a tool name
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolSelect, ToolPen, ToolHighlighter, ToolComment:
		return Tool(s), nil
	case "cursor":
		return ToolSelect, nil
	default:
		return "", fmt.Errorf("unknown tool: %s", s)
	}
}

// Frame is the bounding box of the media container in client pixels
type Frame struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Normalize maps a client position to percentage-of-frame coordinates
func (f Frame) Normalize(clientX, clientY float64) Coord {
	if f.Width <= 0 || f.Height <= 0 {
		return Coord{}
	}
	return Coord{
		X: (clientX - f.Left) / f.Width * 100,
		Y: (clientY - f.Top) / f.Height * 100,
	}
}

// Gate is the view state that decides whether capture may start
type Gate struct {
	Tool      Tool // Active tool
	Latest    bool // Active version is the latest
	Comparing bool // A comparison version is selected
	Video     bool // Active media is video
	Pending   int  // Regions in the pending draft
}

// Check returns nil when a pointer-down may start a capture. A pending region
// group on video is a user-facing rejection; every other refusal is silent.
func (g Gate) Check() error {
	if g.Tool == ToolSelect {
		return reviewerr.New(reviewerr.CaptureDisabled, "select tool does not capture")
	}
	if !g.Latest {
		return reviewerr.New(reviewerr.CaptureDisabled, "historical versions are read-only")
	}
	if g.Comparing {
		return reviewerr.New(reviewerr.CaptureDisabled, "capture is disabled while comparing versions")
	}
	if g.Video && g.Pending > 0 {
		return reviewerr.New(reviewerr.RegionPending,
			"Please add a comment to your current annotation before adding another.")
	}
	return nil
}

// Capturer accumulates pointer events into regions
type Capturer struct {
	ids       *IDSource
	tool      Tool
	color     string
	baseWidth float64

	drawing bool
	path    []Coord
}

// NewCapturer creates a capturer with the select tool active
func NewCapturer(ids *IDSource, color string, baseWidth float64) *Capturer {
	return &Capturer{
		ids:       ids,
		tool:      ToolSelect,
		color:     color,
		baseWidth: baseWidth,
	}
}

// Tool returns the active tool
func (c *Capturer) Tool() Tool {
	return c.tool
}

// SetTool changes the active tool, abandoning any stroke in progress
func (c *Capturer) SetTool(t Tool) {
	c.tool = t
	c.Cancel()
}

// SetColor sets the stroke color
func (c *Capturer) SetColor(color string) {
	c.color = color
}

// SetBaseWidth sets the base stroke width
func (c *Capturer) SetBaseWidth(w float64) {
	c.baseWidth = w
}

// Color returns the stroke color
func (c *Capturer) Color() string {
	return c.color
}

// StrokeWidth returns the effective width for the active tool
func (c *Capturer) StrokeWidth() float64 {
	if c.tool == ToolHighlighter {
		return c.baseWidth * HighlighterFactor
	}
	return c.baseWidth
}

// Drawing reports whether a stroke is in progress
func (c *Capturer) Drawing() bool {
	return c.drawing
}

// CurrentPath returns a copy of the stroke in progress
func (c *Capturer) CurrentPath() []Coord {
	out := make([]Coord, len(c.path))
	copy(out, c.path)
	return out
}

// Begin handles pointer-down. The comment tool emits a point immediately;
// drawing tools start a path and emit nothing until End.
func (c *Capturer) Begin(at Coord, video bool) (Region, bool) {
	switch c.tool {
	case ToolPen, ToolHighlighter:
		c.drawing = true
		c.path = []Coord{at}
		return Region{}, false
	case ToolComment:
		r := NewPoint(c.ids.Next(), at)
		if video {
			c.tool = ToolSelect
		}
		return r, true
	default:
		return Region{}, false
	}
}

// Move appends to the stroke in progress
func (c *Capturer) Move(at Coord) {
	if !c.drawing {
		return
	}
	c.path = append(c.path, at)
}

// End finalizes the stroke. Strokes with fewer than 2 points are discarded.
func (c *Capturer) End(video bool) (Region, bool) {
	if !c.drawing {
		return Region{}, false
	}
	path := c.path
	c.Cancel()
	if len(path) < 2 {
		return Region{}, false
	}

	r := NewDrawing(c.ids.Next(), path, c.color, c.StrokeWidth())
	if video {
		c.tool = ToolSelect
	}
	return r, true
}

// Cancel abandons the stroke in progress
func (c *Capturer) Cancel() {
	c.drawing = false
	c.path = nil
}
