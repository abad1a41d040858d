// Observability HTTP server for review session metrics, health and profiling
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/logger"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/metrics"
)

// ObservabilityServer serves /metrics, /health, /ready and pprof for one
// review session. It never touches session state; readiness is signalled
// explicitly once the session is loaded.
type ObservabilityServer struct {
	server *http.Server
	log    *logger.Logger
	ready  *atomic.Bool
}

type healthResponse struct {
	Status        string    `json:"status"`
	Service       string    `json:"service"`
	StartedAt     time.Time `json:"startedAt"`
	UptimeSeconds float64   `json:"uptimeSeconds"`
}

type readyResponse struct {
	Status string `json:"status"`
}

// NewObservabilityServer creates the HTTP server; it reports not ready until
// MarkReady is called
func NewObservabilityServer(port int, m *metrics.Metrics, log *logger.Logger) *ObservabilityServer {
	ready := &atomic.Bool{}
	return &ObservabilityServer{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      NewHandler(m, ready),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log:   log,
		ready: ready,
	}
}

// MarkReady flips /ready to 200
func (o *ObservabilityServer) MarkReady() {
	o.ready.Store(true)
}

// NewHandler builds the observability mux. A nil ready flag reports ready.
func NewHandler(m *metrics.Metrics, ready *atomic.Bool) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:        "healthy",
			Service:       "mediareview",
			StartedAt:     m.SessionStartTime,
			UptimeSeconds: time.Since(m.SessionStartTime).Seconds(),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "loading"})
			return
		}
		writeJSON(w, http.StatusOK, readyResponse{Status: "ready"})
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves until Shutdown
func (o *ObservabilityServer) Start() error {
	o.log.Info("Starting observability server").
		Str("addr", o.server.Addr).
		Str("metrics", fmt.Sprintf("http://%s/metrics", o.server.Addr)).
		Str("health", fmt.Sprintf("http://%s/health", o.server.Addr)).
		Send()

	if err := o.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("observability server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (o *ObservabilityServer) Shutdown(ctx context.Context) error {
	o.log.Info("Shutting down observability server").Send()
	return o.server.Shutdown(ctx)
}
