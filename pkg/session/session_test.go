// ABOUTME: Tests for the review session state object
// ABOUTME: Verifies version resets, undo precedence, submit rules and derived views

package session

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/query"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/timeline"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

var base = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

type frameGenerator struct{}

func (frameGenerator) Generate(ctx context.Context, locator string, count int) ([]string, error) {
	frames := make([]string, count)
	for i := range frames {
		frames[i] = fmt.Sprintf("%s#%d", locator, i)
	}
	return frames, nil
}

func sec(v float64) *float64 { return &v }

func pt(id string) []region.Region {
	return []region.Region{region.NewPoint(id, region.Coord{X: 40, Y: 40})}
}

// setupTestSession builds V1 (image, one anchored comment) and V2 (video,
// latest) holding vid-1 (t=3), vid-2 (t=0.5) and general vid-3
func setupTestSession(t *testing.T) *Session {
	t.Helper()

	v1 := &version.Version{
		Number: 1, Label: "Initial Concept", MediaKind: annotation.MediaImage,
		MediaLocator: "media/v1.png", CreatedAt: base, CreatedBy: "Bob",
		Annotations: annotation.NewStore([]*annotation.Annotation{{
			ID: "img-1", AuthorRole: annotation.RoleClient, AuthorName: "Alice",
			Text: "logo too small", CreatedAt: base, Regions: pt("r-img"),
			CommentType: annotation.TypeNote, Status: annotation.StatusOpen,
		}}),
	}
	v2 := &version.Version{
		Number: 2, Label: "Animatic", MediaKind: annotation.MediaVideo,
		MediaLocator: "media/v2.mp4", CreatedAt: base.Add(time.Hour), CreatedBy: "Bob",
		Annotations: annotation.NewStore([]*annotation.Annotation{
			{
				ID: "vid-1", AuthorRole: annotation.RoleClient, AuthorName: "Alice",
				Text: "cut earlier", CreatedAt: base, Timestamp: sec(3), Regions: pt("r1"),
				CommentType: annotation.TypeNote, Status: annotation.StatusOpen,
			},
			{
				ID: "vid-2", AuthorRole: annotation.RoleStaff, AuthorName: "Bob",
				Text: "fixed the grade", CreatedAt: base.Add(time.Minute), Timestamp: sec(0.5), Regions: pt("r2"),
				CommentType: annotation.TypeNote, Status: annotation.StatusOpen,
			},
			{
				ID: "vid-3", AuthorRole: annotation.RoleClient, AuthorName: "Alice",
				Text: "overall good", CreatedAt: base.Add(2 * time.Minute),
				CommentType: annotation.TypeNote, Status: annotation.StatusOpen,
			},
		}),
	}

	h, err := version.NewHistory([]*version.Version{v1, v2})
	require.NoError(t, err)

	return New(h, nil, Options{
		Actor:     annotation.Actor{Role: annotation.RoleStaff, Name: "Bob"},
		Generator: frameGenerator{},
		Clock:     func() time.Time { return base.Add(24 * time.Hour) },
	})
}

func stroke(t *testing.T, s *Session, tool string) {
	t.Helper()
	require.NoError(t, s.SetTool(tool))
	require.NoError(t, s.PointerDown(region.Coord{X: 10, Y: 10}))
	s.PointerMove(region.Coord{X: 20, Y: 20})
	s.PointerUp()
}

func TestSwitchVersionResetsTransientState(t *testing.T) {
	s := setupTestSession(t)

	s.Seek(2)
	stroke(t, s, "pen")
	s.SetCommentText("needs work")
	s.Select("vid-1")
	s.Hover("vid-2")
	s.SetPlaying(true)
	require.True(t, s.Draft().HasRegions())

	require.NoError(t, s.SwitchVersion(0))

	d := s.Draft()
	assert.False(t, d.HasRegions())
	assert.Nil(t, d.Timestamp)
	assert.Empty(t, d.Text)
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Hovered())
	pos, playing, _ := s.Playback()
	assert.Equal(t, 0.0, pos)
	assert.False(t, playing)
	assert.False(t, s.History().IsLatest())

	require.NoError(t, s.SwitchVersion(1))
	other := 0
	require.NoError(t, s.SetComparison(&other))
	require.NoError(t, s.SwitchVersion(1))
	_, comparing := s.History().Comparison()
	assert.False(t, comparing, "switching clears the comparison target")
}

func TestIsLatestTracksHistory(t *testing.T) {
	s := setupTestSession(t)
	h := s.History()

	check := func() {
		assert.Equal(t, h.ActiveIndex() == h.Len()-1, h.IsLatest())
	}

	check()
	require.NoError(t, s.SwitchVersion(0))
	check()
	_, err := s.RestoreVersion(0)
	require.NoError(t, err)
	check()
	assert.True(t, h.IsLatest())
}

func TestUndoPrecedenceOnImage(t *testing.T) {
	s := setupTestSession(t)
	s.PublishVersion(version.NewVersion{
		Label: "Still", MediaKind: annotation.MediaImage, MediaLocator: "media/still.png",
	})

	require.NoError(t, s.SetTool("comment"))
	require.NoError(t, s.PointerDown(region.Coord{X: 5, Y: 5}))
	s.SetCommentText("prior comment")
	_, err := s.Submit()
	require.NoError(t, err)
	require.Equal(t, 1, s.History().Active().Annotations.Len())

	require.NoError(t, s.PointerDown(region.Coord{X: 20, Y: 20}))
	require.NoError(t, s.PointerDown(region.Coord{X: 30, Y: 30}))
	require.Len(t, s.Draft().Regions, 2)

	require.NoError(t, s.UndoLast())
	require.Len(t, s.Draft().Regions, 1)
	assert.Equal(t, 20.0, s.Draft().Regions[0].Point.X, "the second region goes first")

	require.NoError(t, s.UndoLast())
	assert.False(t, s.Draft().HasRegions())
	assert.Equal(t, 1, s.History().Active().Annotations.Len())

	require.NoError(t, s.UndoLast())
	assert.Equal(t, 0, s.History().Active().Annotations.Len())
}

func TestUndoClearsCapturedTimestamp(t *testing.T) {
	s := setupTestSession(t)

	s.Seek(4)
	stroke(t, s, "highlighter")
	d := s.Draft()
	require.Len(t, d.Regions, 1)
	require.NotNil(t, d.Timestamp)
	assert.Equal(t, 4.0, *d.Timestamp)
	assert.Equal(t, 12.0, d.Regions[0].StrokeWidth)

	require.NoError(t, s.UndoLast())
	assert.Nil(t, s.Draft().Timestamp)
}

func TestUndoPeelsOnlyOwnRoleAnchoredComments(t *testing.T) {
	s := setupTestSession(t)

	require.NoError(t, s.UndoLast())
	_, ok := s.History().Active().Annotations.Get("vid-2")
	assert.False(t, ok, "staff undo removes the staff comment")

	require.NoError(t, s.UndoLast())
	assert.Equal(t, 2, s.History().Active().Annotations.Len(), "no further staff comments to remove")
}

func TestRestoreIsDeepCopy(t *testing.T) {
	s := setupTestSession(t)

	v, err := s.RestoreVersion(0)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Number)
	assert.Equal(t, "Restored from V1", v.Label)
	assert.Equal(t, "Bob", v.CreatedBy)

	require.NoError(t, s.ToggleStatus("img-1"))
	restored, _ := v.Annotations.Get("img-1")
	assert.Equal(t, annotation.StatusResolved, restored.Status)

	src, _ := s.History().At(0)
	orig, _ := src.Annotations.Get("img-1")
	assert.Equal(t, annotation.StatusOpen, orig.Status)
}

func TestMutationsOnHistoricalVersionAreNoops(t *testing.T) {
	s := setupTestSession(t)
	require.NoError(t, s.SwitchVersion(0))
	store := s.History().Active().Annotations
	before := store.Revision()

	resolved := annotation.StatusResolved
	assert.NoError(t, s.Update("img-1", annotation.Fields{Status: &resolved}))
	assert.NoError(t, s.ToggleStatus("img-1"))
	assert.NoError(t, s.PatchAnnotation("img-1", []byte(`{"status":"Resolved"}`)))
	assert.NoError(t, s.Delete("img-1"))
	assert.NoError(t, s.UndoLast())

	a, ok := store.Get("img-1")
	require.True(t, ok)
	assert.Equal(t, annotation.StatusOpen, a.Status)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, before, store.Revision())
}

func TestUnknownIDsAreNoops(t *testing.T) {
	s := setupTestSession(t)
	assert.NoError(t, s.ToggleStatus("missing"))
	assert.NoError(t, s.Delete("missing"))
	assert.Equal(t, 3, s.History().Active().Annotations.Len())
}

func TestSubmitRejections(t *testing.T) {
	s := setupTestSession(t)

	s.SetCommentText("@bob #vfx !")
	_, err := s.Submit()
	assert.Equal(t, reviewerr.EmptyComment, reviewerr.CodeOf(err))
	assert.True(t, reviewerr.IsUserFacing(err))

	other := 0
	require.NoError(t, s.SetComparison(&other))
	s.SetCommentText("hello")
	_, err = s.Submit()
	assert.Equal(t, reviewerr.ComparisonActive, reviewerr.CodeOf(err))
	assert.Equal(t, 3, s.History().Active().Annotations.Len())
}

func TestSubmitComposerShorthand(t *testing.T) {
	s := setupTestSession(t)

	s.SetCommentText("fix the color grading @Bob #VFX!")
	a, err := s.Submit()
	require.NoError(t, err)

	assert.Equal(t, "fix the color grading", a.Text)
	assert.Contains(t, a.Labels, "Color")
	assert.Contains(t, a.Labels, "VFX")
	require.NotNil(t, a.Assignee)
	assert.Equal(t, "Bob (Staff)", *a.Assignee)
	assert.Equal(t, annotation.TypeBlocker, a.CommentType)
	assert.Equal(t, a.ID, s.Selected())

	d := s.Draft()
	assert.Empty(t, d.Text)
	assert.Empty(t, d.Labels)
	assert.Equal(t, annotation.TypeNote, d.Type)
}

func TestGeneralVideoCommentUsesPlayback(t *testing.T) {
	s := setupTestSession(t)

	s.Seek(7.5)
	s.SetCommentText("overall pacing is slow")
	a, err := s.Submit()
	require.NoError(t, err)

	assert.Empty(t, a.Regions)
	require.NotNil(t, a.Timestamp)
	assert.Equal(t, 7.5, *a.Timestamp)
}

func TestRegionCommentUsesCapturedTimestamp(t *testing.T) {
	s := setupTestSession(t)

	s.Seek(2)
	s.SetPlaying(true)
	stroke(t, s, "pen")
	_, playing, _ := s.Playback()
	assert.False(t, playing, "capture pauses playback")
	assert.Equal(t, region.ToolSelect, s.Tool(), "video capture returns to select")

	s.Seek(5)
	s.SetCommentText("too bright")
	a, err := s.Submit()
	require.NoError(t, err)

	require.Len(t, a.Regions, 1)
	assert.Equal(t, region.KindDrawing, a.Regions[0].Kind)
	require.NotNil(t, a.Timestamp)
	assert.Equal(t, 2.0, *a.Timestamp)
}

func TestPointerGate(t *testing.T) {
	s := setupTestSession(t)

	stroke(t, s, "pen")
	require.NoError(t, s.SetTool("comment"))
	err := s.PointerDown(region.Coord{X: 50, Y: 50})
	assert.Equal(t, reviewerr.RegionPending, reviewerr.CodeOf(err))
	assert.Len(t, s.Draft().Regions, 1)

	s.Cancel()
	require.NoError(t, s.SwitchVersion(0))
	require.NoError(t, s.SetTool("comment"))
	assert.False(t, s.CaptureEnabled())
	assert.NoError(t, s.PointerDown(region.Coord{X: 50, Y: 50}))
	assert.False(t, s.Draft().HasRegions())

	s.Select("img-1")
	require.NoError(t, s.SetTool("cursor"))
	require.NoError(t, s.PointerDown(region.Coord{X: 1, Y: 1}))
	assert.Empty(t, s.Selected())
}

func TestComparisonDiscardsDraftAndDisablesCapture(t *testing.T) {
	s := setupTestSession(t)

	stroke(t, s, "pen")
	other := 0
	require.NoError(t, s.SetComparison(&other))
	assert.False(t, s.Draft().HasRegions())

	require.NoError(t, s.SetTool("pen"))
	assert.False(t, s.CaptureEnabled())

	self := 1
	assert.NoError(t, s.SetComparison(&self), "self comparison is ignored")
	idx, ok := s.History().ComparisonIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestSelectSeeksAndDeleteClearsSelection(t *testing.T) {
	s := setupTestSession(t)

	s.Select("vid-1")
	pos, _, _ := s.Playback()
	assert.Equal(t, 3.0, pos)

	require.NoError(t, s.Delete("vid-1"))
	assert.Empty(t, s.Selected())
}

func TestAttachReference(t *testing.T) {
	s := setupTestSession(t)

	err := s.AttachReference(annotation.ReferenceFile{Name: "big.mov", SizeBytes: 6 * 1024 * 1024})
	assert.Equal(t, reviewerr.AttachmentSize, reviewerr.CodeOf(err))
	assert.Nil(t, s.Draft().Reference)

	require.NoError(t, s.AttachReference(annotation.ReferenceFile{Name: "ref.png", MimeType: "image/png", SizeBytes: 1024}))
	require.NotNil(t, s.Draft().Reference)
	assert.Equal(t, "ref.png", s.Draft().Reference.Name)
}

func TestFrameNumberingIsFilterInvariant(t *testing.T) {
	s := setupTestSession(t)

	f, err := s.Frame()
	require.NoError(t, err)

	require.Len(t, f.Items, 2, "vid-2 in window, vid-3 general")
	numbers := map[string]int{}
	for _, it := range f.Items {
		numbers[it.Annotation.ID] = it.Number
		assert.Equal(t, "active", string(it.Source))
	}
	assert.Equal(t, 1, numbers["vid-2"])
	assert.Equal(t, 0, numbers["vid-3"])

	require.Len(t, f.Sidebar, 3)
	assert.Equal(t, "vid-3", f.Sidebar[0].Annotation.ID)
	assert.Equal(t, 2, f.Sidebar[2].Number)

	require.NoError(t, s.ToggleStatus("vid-2"))
	filter := s.Filter()
	filter.Status = annotation.StatusResolved
	require.NoError(t, s.SetFilter(filter))

	rows, err := s.Sidebar()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "vid-2", rows[0].Annotation.ID)
	assert.Equal(t, 1, rows[0].Number)
}

func TestFrameComparisonDeduplicates(t *testing.T) {
	s := setupTestSession(t)

	_, err := s.RestoreVersion(0)
	require.NoError(t, err)
	other := 0
	require.NoError(t, s.SetComparison(&other))

	f, err := s.Frame()
	require.NoError(t, err)
	require.Len(t, f.Items, 1)
	assert.Equal(t, "img-1", f.Items[0].Annotation.ID)
	assert.Equal(t, "active", string(f.Items[0].Source))
	require.NotNil(t, f.Comparison)
	assert.Equal(t, 1, f.Comparison.Number)
}

func TestMarkers(t *testing.T) {
	s := setupTestSession(t)
	assert.Empty(t, s.Markers(), "no markers before the duration is known")

	s.SetDuration(10)
	markers := s.Markers()
	require.Len(t, markers, 2)
	byID := map[string]timeline.Marker{}
	for _, m := range markers {
		byID[m.ID] = m
	}
	assert.InDelta(t, 0.3, byID["vid-1"].Position, 1e-9)
	assert.Equal(t, 2, byID["vid-1"].Number)
}

func TestThumbnailsDiscardStaleResults(t *testing.T) {
	s := setupTestSession(t)
	ctx := context.Background()

	ch, ok := s.RequestThumbnails(ctx)
	require.True(t, ok)
	stale := <-ch

	require.NoError(t, s.SwitchVersion(0))
	assert.False(t, s.ApplyThumbnails(stale))

	_, ok = s.RequestThumbnails(ctx)
	assert.False(t, ok, "image versions have no timeline")

	require.NoError(t, s.SwitchVersion(1))
	ch, ok = s.RequestThumbnails(ctx)
	require.True(t, ok)
	assert.True(t, s.ApplyThumbnails(<-ch))

	s.SetDuration(12)
	frame, ok := s.TimelinePreview(0.5)
	require.True(t, ok)
	assert.Equal(t, "media/v2.mp4#6", frame)
}

func TestVersionPreviews(t *testing.T) {
	s := setupTestSession(t)
	ctx := context.Background()

	_, ok := s.RequestVersionPreview(ctx, 0)
	assert.False(t, ok)
	preview, ok := s.VersionPreview(1)
	require.True(t, ok)
	assert.Equal(t, "media/v1.png", preview)

	ch, ok := s.RequestVersionPreview(ctx, 1)
	require.True(t, ok)
	s.ApplyVersionPreview(<-ch)
	preview, ok = s.VersionPreview(2)
	require.True(t, ok)
	assert.Equal(t, "media/v2.mp4#0", preview)
}

func TestClientCannotSeeOrToggleInternal(t *testing.T) {
	s := setupTestSession(t)
	s.SetDraftInternal(true)
	s.SetCommentText("// staff note about the edit")
	a, err := s.Submit()
	require.NoError(t, err)
	require.True(t, a.IsInternal)

	s.SetActor(annotation.Actor{Role: annotation.RoleClient, Name: "Alice"})
	s.SetDraftInternal(true)
	assert.False(t, s.Draft().Internal)

	for _, it := range s.Items() {
		assert.NotEqual(t, a.ID, it.Annotation.ID)
	}
	rows, err := s.Sidebar()
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, a.ID, r.Annotation.ID)
	}
}

func TestSetFilterRejectsNegativePaging(t *testing.T) {
	s := setupTestSession(t)

	err := s.SetFilter(query.NewFilterBuilder(annotation.RoleStaff).Status("").Offset(-1).Build())
	assert.Equal(t, reviewerr.InvalidInput, reviewerr.CodeOf(err))
	err = s.SetFilter(query.NewFilterBuilder(annotation.RoleStaff).Status("").Limit(-2).Build())
	assert.Equal(t, reviewerr.InvalidInput, reviewerr.CodeOf(err))

	rows, err := s.Sidebar()
	require.NoError(t, err)
	assert.Len(t, rows, 3, "previous filter kept")
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	s := setupTestSession(t)

	pending := annotation.Status("Pending")
	err := s.Update("vid-1", annotation.Fields{Status: &pending})
	assert.Equal(t, reviewerr.InvalidInput, reviewerr.CodeOf(err))

	a, _, ok := s.history.FindAnnotation("vid-1")
	require.True(t, ok)
	assert.Equal(t, annotation.StatusOpen, a.Status)
}

func TestSeekIgnoresNonFiniteInput(t *testing.T) {
	s := setupTestSession(t)
	s.SetDuration(10)

	s.Seek(math.NaN())
	pos, _, _ := s.Playback()
	assert.Equal(t, 0.0, pos)

	s.Seek(math.Inf(1))
	pos, _, _ = s.Playback()
	assert.Equal(t, 0.0, pos)

	s.Seek(2)
	f, err := s.Frame()
	require.NoError(t, err)
	assert.Len(t, f.Items, 2, "timed items stay visible after a bad seek")

	s.SetDuration(math.NaN())
	_, _, d := s.Playback()
	assert.Equal(t, 0.0, d)
}

func TestFrameItemsCarryBadgeAnchor(t *testing.T) {
	s := setupTestSession(t)
	s.Seek(3)

	f, err := s.Frame()
	require.NoError(t, err)
	byID := map[string]Item{}
	for _, it := range f.Items {
		byID[it.Annotation.ID] = it
	}
	require.Contains(t, byID, "vid-1")
	require.NotNil(t, byID["vid-1"].Badge)
	assert.Equal(t, region.Coord{X: 40, Y: 40}, *byID["vid-1"].Badge)
	assert.Nil(t, byID["vid-3"].Badge, "general comments have no badge")
}
