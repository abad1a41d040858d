// ABOUTME: Tests for pointer capture
// ABOUTME: Verifies stroke finalization, tool widths and gating

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
)

func setupTestCapturer(t *testing.T, tool Tool) *Capturer {
	t.Helper()
	c := NewCapturer(NewIDSource(), "#81C784", 8)
	c.SetTool(tool)
	return c
}

func TestFrameNormalize(t *testing.T) {
	f := Frame{Left: 100, Top: 50, Width: 400, Height: 200}

	got := f.Normalize(300, 100)
	assert.InDelta(t, 50, got.X, 1e-9)
	assert.InDelta(t, 25, got.Y, 1e-9)

	assert.Equal(t, Coord{}, Frame{}.Normalize(10, 10))
}

func TestPenStroke(t *testing.T) {
	c := setupTestCapturer(t, ToolPen)

	_, emitted := c.Begin(Coord{X: 10, Y: 10}, false)
	assert.False(t, emitted)
	assert.True(t, c.Drawing())

	c.Move(Coord{X: 20, Y: 20})
	c.Move(Coord{X: 30, Y: 25})

	r, ok := c.End(false)
	require.True(t, ok)
	assert.Equal(t, KindDrawing, r.Kind)
	assert.Len(t, r.Path, 3)
	assert.Equal(t, 8.0, r.StrokeWidth)
	assert.Equal(t, "#81C784", r.Color)
	assert.NotEmpty(t, r.ID)
	assert.NoError(t, r.Validate())
	assert.False(t, c.Drawing())
	assert.Equal(t, ToolPen, c.Tool())
}

func TestHighlighterTriplesWidth(t *testing.T) {
	c := setupTestCapturer(t, ToolHighlighter)

	c.Begin(Coord{X: 1, Y: 1}, false)
	c.Move(Coord{X: 2, Y: 2})
	r, ok := c.End(false)

	require.True(t, ok)
	assert.Equal(t, 24.0, r.StrokeWidth)
}

func TestShortStrokeDiscarded(t *testing.T) {
	c := setupTestCapturer(t, ToolPen)

	c.Begin(Coord{X: 5, Y: 5}, false)
	_, ok := c.End(false)

	assert.False(t, ok)
	assert.False(t, c.Drawing())
}

func TestCommentToolEmitsPoint(t *testing.T) {
	c := setupTestCapturer(t, ToolComment)

	r, ok := c.Begin(Coord{X: 45, Y: 50}, false)
	require.True(t, ok)
	assert.Equal(t, KindPoint, r.Kind)
	require.NotNil(t, r.Point)
	assert.Equal(t, Coord{X: 45, Y: 50}, *r.Point)
	assert.Equal(t, ToolComment, c.Tool())

	_, ok = c.Begin(Coord{X: 10, Y: 10}, true)
	require.True(t, ok)
	assert.Equal(t, ToolSelect, c.Tool(), "video placement returns to select")
}

func TestVideoStrokeReturnsToSelect(t *testing.T) {
	c := setupTestCapturer(t, ToolPen)

	c.Begin(Coord{X: 1, Y: 1}, true)
	c.Move(Coord{X: 3, Y: 3})
	_, ok := c.End(true)

	require.True(t, ok)
	assert.Equal(t, ToolSelect, c.Tool())
}

func TestSelectToolCapturesNothing(t *testing.T) {
	c := setupTestCapturer(t, ToolSelect)

	_, ok := c.Begin(Coord{X: 1, Y: 1}, false)
	assert.False(t, ok)
	assert.False(t, c.Drawing())
}

func TestGateCheck(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
		code reviewerr.Code
	}{
		{"open", Gate{Tool: ToolPen, Latest: true}, ""},
		{"select tool", Gate{Tool: ToolSelect, Latest: true}, reviewerr.CaptureDisabled},
		{"historical", Gate{Tool: ToolPen, Latest: false}, reviewerr.CaptureDisabled},
		{"comparing", Gate{Tool: ToolPen, Latest: true, Comparing: true}, reviewerr.CaptureDisabled},
		{"video pending", Gate{Tool: ToolComment, Latest: true, Video: true, Pending: 1}, reviewerr.RegionPending},
		{"image pending", Gate{Tool: ToolComment, Latest: true, Pending: 3}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gate.Check()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, reviewerr.CodeOf(err))
		})
	}

	assert.True(t, reviewerr.IsUserFacing(Gate{Tool: ToolPen, Latest: true, Video: true, Pending: 1}.Check()))
}

func TestParseTool(t *testing.T) {
	tool, err := ParseTool("cursor")
	require.NoError(t, err)
	assert.Equal(t, ToolSelect, tool)

	_, err = ParseTool("lasso")
	assert.Error(t, err)
}

func TestRegionCloneIsIndependent(t *testing.T) {
	orig := NewDrawing("r1", []Coord{{X: 1, Y: 1}, {X: 2, Y: 2}}, "#fff", 4)
	cp := orig.Clone()
	cp.Path[0].X = 99

	assert.Equal(t, 1.0, orig.Path[0].X)

	p := NewPoint("p1", Coord{X: 3, Y: 4})
	pc := p.Clone()
	pc.Point.X = 50
	assert.Equal(t, 3.0, p.Point.X)
}

func TestIDSourceUnique(t *testing.T) {
	ids := NewIDSource()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := ids.Next()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestRegionAnchor(t *testing.T) {
	at, ok := NewPoint("p", Coord{X: 40, Y: 60}).Anchor()
	require.True(t, ok)
	assert.Equal(t, Coord{X: 40, Y: 60}, at)

	at, ok = NewDrawing("d", []Coord{{X: 5, Y: 6}, {X: 7, Y: 8}}, "#fff", 4).Anchor()
	require.True(t, ok)
	assert.Equal(t, Coord{X: 5, Y: 6}, at)

	_, ok = Region{Kind: KindDrawing}.Anchor()
	assert.False(t, ok)
}
