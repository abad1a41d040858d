package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsAreRegistryScoped(t *testing.T) {
	// Two sets must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()

	a.RecordRejected("REVIEW_EMPTY_COMMENT")
	a.RecordRejected("REVIEW_EMPTY_COMMENT")
	b.RecordRejected("REVIEW_EMPTY_COMMENT")

	if got := testutil.ToFloat64(a.RejectedTotal.WithLabelValues("REVIEW_EMPTY_COMMENT")); got != 2 {
		t.Errorf("Expected 2 rejections, got %v", got)
	}
	if got := testutil.ToFloat64(b.RejectedTotal.WithLabelValues("REVIEW_EMPTY_COMMENT")); got != 1 {
		t.Errorf("Expected 1 rejection, got %v", got)
	}
}

func TestUpdateSessionStats(t *testing.T) {
	m := NewMetrics()
	m.UpdateSessionStats(3, 7)

	if got := testutil.ToFloat64(m.VersionsTotal); got != 3 {
		t.Errorf("Expected 3 versions, got %v", got)
	}
	if got := testutil.ToFloat64(m.AnnotationsTotal); got != 7 {
		t.Errorf("Expected 7 annotations, got %v", got)
	}
}
