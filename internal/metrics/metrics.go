// Package metrics exposes Prometheus collectors and the health endpoint
// for the market data server.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the snapshot pipeline.
type Metrics struct {
	RefreshTotal    prometheus.Counter
	RefreshFailures prometheus.Counter
	RefreshDur      prometheus.Histogram
	SnapshotAge     prometheus.Gauge
	MarketState     prometheus.Gauge // 0=closed, 1=open
	ConnectedWS     prometheus.Gauge
	BroadcastDrops  prometheus.Counter
	SkippedTicks    prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_refresh_total",
			Help: "Total snapshot regenerations",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_refresh_failures_total",
			Help: "Snapshot regenerations that returned an error",
		}),
		RefreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "market_refresh_duration_seconds",
			Help:    "Snapshot generation latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "market_snapshot_age_seconds",
			Help: "Age of the currently served snapshot",
		}),
		MarketState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "market_state",
			Help: "Trading session state (0=closed, 1=open)",
		}),
		ConnectedWS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "market_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		BroadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_broadcast_drops_total",
			Help: "Snapshots dropped for slow subscribers",
		}),
		SkippedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "market_scheduler_skipped_ticks_total",
			Help: "Scheduled refresh ticks skipped because the market was closed",
		}),
	}

	prometheus.MustRegister(
		m.RefreshTotal,
		m.RefreshFailures,
		m.RefreshDur,
		m.SnapshotAge,
		m.MarketState,
		m.ConnectedWS,
		m.BroadcastDrops,
		m.SkippedTicks,
	)

	return m
}

// HealthStatus reports cache freshness for the /healthz probe.
type HealthStatus struct {
	mu sync.RWMutex

	lastUpdate time.Time
	lastErr    string
	stale      bool
	marketOpen bool
	wsClients  int
	startedAt  time.Time
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{startedAt: time.Now()}
}

// Observe records the cache view used by the next /healthz response.
func (h *HealthStatus) Observe(lastUpdate time.Time, stale bool, lastErr error, marketOpen bool, wsClients int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastUpdate = lastUpdate
	h.stale = stale
	h.marketOpen = marketOpen
	h.wsClients = wsClients
	if lastErr != nil {
		h.lastErr = lastErr.Error()
	} else {
		h.lastErr = ""
	}
}

// ServeHTTP handles the /healthz endpoint. A stale cache with a pending
// generation error is degraded: the process keeps serving the last good
// snapshot but the probe makes that state visible.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "fresh"
	httpCode := http.StatusOK
	switch {
	case h.stale && h.lastErr != "":
		status = "degraded"
		httpCode = http.StatusServiceUnavailable
	case h.stale || h.lastUpdate.IsZero():
		status = "stale"
	}

	lastUpdate := ""
	if !h.lastUpdate.IsZero() {
		lastUpdate = h.lastUpdate.Format(time.RFC3339)
	}

	body := struct {
		Status     string `json:"status"`
		Uptime     string `json:"uptime"`
		LastUpdate string `json:"lastUpdate"`
		LastError  string `json:"lastError,omitempty"`
		MarketOpen bool   `json:"marketOpen"`
		WSClients  int    `json:"wsClients"`
	}{
		Status:     status,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		LastUpdate: lastUpdate,
		LastError:  h.lastErr,
		MarketOpen: h.marketOpen,
		WSClients:  h.wsClients,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
