// Package metrics provides Prometheus metrics for the media review engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of a review session
type Metrics struct {
	Registry *prometheus.Registry

	// Annotation metrics
	AnnotationOpsTotal *prometheus.CounterVec
	AnnotationsTotal   prometheus.Gauge
	RejectedTotal      *prometheus.CounterVec

	// Version metrics
	VersionSwitchesTotal prometheus.Counter
	VersionRestoresTotal prometheus.Counter
	VersionsTotal        prometheus.Gauge

	// Derived view metrics
	ViewDuration *prometheus.HistogramVec

	// Thumbnail metrics
	ThumbnailResultsTotal *prometheus.CounterVec

	// Session metrics
	SessionUptimeSeconds prometheus.Gauge
	SessionStartTime     time.Time
}

// NewMetrics creates all metrics on a fresh registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.NewRegistry())
}

// NewMetricsWith creates and registers all metrics on reg
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		Registry:         reg,
		SessionStartTime: time.Now(),
	}

	// Annotation metrics
	m.AnnotationOpsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediareview_annotation_operations_total",
			Help: "Total number of annotation operations",
		},
		[]string{"operation", "status"},
	)

	m.AnnotationsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediareview_annotations",
			Help: "Number of annotations in the active version",
		},
	)

	m.RejectedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediareview_rejected_inputs_total",
			Help: "Total number of rejected user inputs",
		},
		[]string{"code"},
	)

	// Version metrics
	m.VersionSwitchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mediareview_version_switches_total",
			Help: "Total number of active version switches",
		},
	)

	m.VersionRestoresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "mediareview_version_restores_total",
			Help: "Total number of versions restored as new",
		},
	)

	m.VersionsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediareview_versions",
			Help: "Number of versions in the history",
		},
	)

	// Derived view metrics
	m.ViewDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediareview_view_duration_seconds",
			Help:    "Duration of derived view computation in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"view"},
	)

	// Thumbnail metrics
	m.ThumbnailResultsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediareview_thumbnail_results_total",
			Help: "Total number of thumbnail generation results",
		},
		[]string{"kind", "status"},
	)

	// Session metrics
	m.SessionUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediareview_session_uptime_seconds",
			Help: "Session uptime in seconds",
		},
	)

	return m
}

// RunUptime periodically updates the uptime metric until done is closed
func (m *Metrics) RunUptime(done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.SessionUptimeSeconds.Set(time.Since(m.SessionStartTime).Seconds())
		}
	}
}

// RecordAnnotationOp records an annotation operation with its status
func (m *Metrics) RecordAnnotationOp(operation string, status string) {
	m.AnnotationOpsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRejected records a rejected user input
func (m *Metrics) RecordRejected(code string) {
	m.RejectedTotal.WithLabelValues(code).Inc()
}

// RecordView records how long a derived view took to compute
func (m *Metrics) RecordView(view string, duration time.Duration) {
	m.ViewDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordThumbnail records a thumbnail generation result
func (m *Metrics) RecordThumbnail(kind string, status string) {
	m.ThumbnailResultsTotal.WithLabelValues(kind, status).Inc()
}

// UpdateSessionStats updates history statistics
func (m *Metrics) UpdateSessionStats(versions int, annotations int) {
	m.VersionsTotal.Set(float64(versions))
	m.AnnotationsTotal.Set(float64(annotations))
}
