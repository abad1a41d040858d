// ABOUTME: Tests for version history
// ABOUTME: Verifies switching, restore, comparison rules and temporal lookups

package version

import (
	"testing"
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
)

var baseTime = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func setupTestHistory(t *testing.T) *History {
	t.Helper()

	ts := 2.0
	v1 := &Version{
		Number:       1,
		Label:        "Initial Cut",
		MediaKind:    annotation.MediaVideo,
		MediaLocator: "media/v1.mp4",
		CreatedAt:    baseTime,
		CreatedBy:    "Bob",
		Annotations: annotation.NewStore([]*annotation.Annotation{{
			ID:         "a1",
			AuthorRole: annotation.RoleClient,
			AuthorName: "Alice",
			Text:       "too dark here",
			CreatedAt:  baseTime,
			Timestamp:  &ts,
			Regions:    []region.Region{region.NewPoint("r1", region.Coord{X: 10, Y: 20})},
			Status:     annotation.StatusOpen,
			Labels:     []string{"Color"},
		}}),
	}
	v2 := &Version{
		Number:       2,
		Label:        "Color Pass",
		MediaKind:    annotation.MediaVideo,
		MediaLocator: "media/v2.mp4",
		CreatedAt:    baseTime.Add(24 * time.Hour),
		CreatedBy:    "Bob",
	}

	h, err := NewHistory([]*Version{v1, v2})
	if err != nil {
		t.Fatalf("Failed to create history: %v", err)
	}
	return h
}

func TestNewHistoryFreezesEarlierVersions(t *testing.T) {
	h := setupTestHistory(t)

	if h.ActiveIndex() != 1 {
		t.Errorf("Expected active index 1, got %d", h.ActiveIndex())
	}
	if !h.IsLatest() {
		t.Error("Expected last version to be latest")
	}

	v1, _ := h.At(0)
	if !v1.Annotations.Frozen() {
		t.Error("Expected V1 store to be frozen")
	}
	if h.Active().Annotations.Frozen() {
		t.Error("Expected latest store to be mutable")
	}
}

func TestNewHistoryRejectsBadNumbering(t *testing.T) {
	if _, err := NewHistory(nil); err == nil {
		t.Error("Expected error for empty history")
	}

	_, err := NewHistory([]*Version{{Number: 2}, {Number: 1}})
	if err == nil {
		t.Error("Expected error for decreasing numbers")
	}
}

func TestSwitchActive(t *testing.T) {
	h := setupTestHistory(t)

	other := 0
	if err := h.SetComparison(&other); err != nil {
		t.Fatalf("Failed to set comparison: %v", err)
	}

	if err := h.SwitchActive(0); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	if h.IsLatest() {
		t.Error("V1 should not be latest")
	}
	if _, ok := h.Comparison(); ok {
		t.Error("Switching must clear the comparison target")
	}

	err := h.SwitchActive(5)
	if reviewerr.CodeOf(err) != reviewerr.IndexRange {
		t.Errorf("Expected IndexRange, got %v", err)
	}
}

func TestRestoreAsNew(t *testing.T) {
	h := setupTestHistory(t)
	now := baseTime.Add(48 * time.Hour)

	v, err := h.RestoreAsNew(0, "Bob", now)
	if err != nil {
		t.Fatalf("Failed to restore: %v", err)
	}

	if v.Number != 3 {
		t.Errorf("Expected V3, got V%d", v.Number)
	}
	if v.Label != "Restored from V1" {
		t.Errorf("Unexpected label %q", v.Label)
	}
	if v.MediaLocator != "media/v1.mp4" {
		t.Errorf("Expected source media, got %s", v.MediaLocator)
	}
	if h.ActiveIndex() != 2 || !h.IsLatest() {
		t.Error("Restored version should be active and latest")
	}
	if v.Annotations.Len() != 1 {
		t.Fatalf("Expected 1 annotation, got %d", v.Annotations.Len())
	}

	prev, _ := h.At(1)
	if !prev.Annotations.Frozen() {
		t.Error("Previous latest should be frozen after restore")
	}

	// The copy is independent of its source.
	if err := v.Annotations.ToggleStatus("a1"); err != nil {
		t.Fatalf("Failed to toggle on restored copy: %v", err)
	}
	src, _ := h.At(0)
	orig, _ := src.Annotations.Get("a1")
	if orig.Status != annotation.StatusOpen {
		t.Error("Source annotation must not change")
	}
}

func TestRestoreNumbersStayMonotonic(t *testing.T) {
	h := setupTestHistory(t)

	for i := 0; i < 3; i++ {
		if _, err := h.RestoreAsNew(0, "Bob", baseTime); err != nil {
			t.Fatalf("Restore %d failed: %v", i, err)
		}
	}

	seen := map[int]bool{}
	prev := 0
	for _, v := range h.ListVersions() {
		if seen[v.Number] || v.Number <= prev {
			t.Errorf("Version numbers not strictly increasing at V%d", v.Number)
		}
		seen[v.Number] = true
		prev = v.Number
	}
	if h.GetLatestVersion().Number != 5 {
		t.Errorf("Expected latest V5, got V%d", h.GetLatestVersion().Number)
	}
}

func TestSetComparison(t *testing.T) {
	h := setupTestHistory(t)

	self := h.ActiveIndex()
	err := h.SetComparison(&self)
	if reviewerr.CodeOf(err) != reviewerr.SelfComparison {
		t.Errorf("Expected SelfComparison, got %v", err)
	}

	bad := 9
	if err := h.SetComparison(&bad); reviewerr.CodeOf(err) != reviewerr.IndexRange {
		t.Errorf("Expected IndexRange, got %v", err)
	}

	other := 0
	if err := h.SetComparison(&other); err != nil {
		t.Fatalf("Failed to set comparison: %v", err)
	}
	cmp, ok := h.Comparison()
	if !ok || cmp.Number != 1 {
		t.Error("Expected V1 as comparison")
	}

	if err := h.SetComparison(nil); err != nil {
		t.Fatalf("Failed to clear comparison: %v", err)
	}
	if _, ok := h.ComparisonIndex(); ok {
		t.Error("Expected comparison cleared")
	}
}

func TestPublish(t *testing.T) {
	h := setupTestHistory(t)

	v := h.Publish(NewVersion{
		Label:        "Final",
		MediaKind:    annotation.MediaImage,
		MediaLocator: "media/final.png",
		CreatedAt:    baseTime.Add(72 * time.Hour),
		CreatedBy:    "Bob",
	})

	if v.Number != 3 || h.Active() != v {
		t.Error("Published version should be V3 and active")
	}
	if v.IsVideo() {
		t.Error("Expected image version")
	}
	prev, _ := h.At(1)
	if !prev.Annotations.Frozen() {
		t.Error("Expected V2 frozen after publish")
	}
}

func TestGetVersionAsOf(t *testing.T) {
	h := setupTestHistory(t)

	v, err := h.GetVersionAsOf(baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to get version as of: %v", err)
	}
	if v.Number != 1 {
		t.Errorf("Expected V1, got V%d", v.Number)
	}

	v, err = h.GetVersionAsOf(baseTime.Add(30 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to get version as of: %v", err)
	}
	if v.Number != 2 {
		t.Errorf("Expected V2, got V%d", v.Number)
	}

	if _, err := h.GetVersionAsOf(baseTime.Add(-time.Hour)); err == nil {
		t.Error("Expected error before first version")
	}
}

func TestGetVersionAndFindAnnotation(t *testing.T) {
	h := setupTestHistory(t)

	v, idx, err := h.GetVersion(1)
	if err != nil || idx != 0 || v.Label != "Initial Cut" {
		t.Fatalf("Unexpected lookup result: %v %d %v", v, idx, err)
	}
	if _, _, err := h.GetVersion(7); err == nil {
		t.Error("Expected error for unknown version")
	}

	if _, _, ok := h.FindAnnotation("a1"); ok {
		t.Error("a1 lives in V1, which is neither active nor compared")
	}

	other := 0
	_ = h.SetComparison(&other)
	a, owner, ok := h.FindAnnotation("a1")
	if !ok || a.ID != "a1" || owner.Number != 1 {
		t.Error("Expected a1 found in comparison version")
	}
}
