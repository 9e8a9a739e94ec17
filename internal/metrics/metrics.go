// Package metrics exposes Prometheus metrics and a health endpoint for the
// index pipeline.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the index pipeline.
type Metrics struct {
	// Ingestion
	TickersFetched    prometheus.Counter
	TickersSkipped    prometheus.Counter // shares-outstanding unavailable
	TickersFailed     prometheus.Counter // provider fetch failures
	ObservationsTotal prometheus.Counter
	FetchRetries      prometheus.Counter
	IngestDur         prometheus.Histogram

	// Computation
	DatesComputed      prometheus.Counter
	EmptyDatesSkipped  prometheus.Counter
	CompositionChanges prometheus.Counter
	ComputeDur         prometheus.Histogram

	// Storage / publishing
	SQLiteCommitDur prometheus.Histogram
	RedisPublishDur prometheus.Histogram
	PublishFailures prometheus.Counter

	// Query surface
	LookupFallbackSteps prometheus.Histogram
	LookupMisses        prometheus.Counter
	WSClients           prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TickersFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_tickers_fetched_total",
			Help: "Tickers whose series was fetched and normalized",
		}),
		TickersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_tickers_skipped_total",
			Help: "Tickers skipped because shares outstanding was unavailable",
		}),
		TickersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_tickers_failed_total",
			Help: "Tickers whose provider fetch failed after retries",
		}),
		ObservationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_observations_total",
			Help: "Observations upserted into the store",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_fetch_retries_total",
			Help: "Retried provider calls",
		}),
		IngestDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "indexengine_ingest_duration_seconds",
			Help:    "Full ingestion pass latency",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		DatesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_dates_computed_total",
			Help: "Index records computed and written",
		}),
		EmptyDatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_empty_dates_total",
			Help: "Computation dates skipped for lack of observations",
		}),
		CompositionChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_composition_changes_total",
			Help: "Detected constituent-set changes",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "indexengine_compute_duration_seconds",
			Help:    "Per-date index computation latency",
			Buckets: prometheus.DefBuckets,
		}),

		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "indexengine_sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),
		RedisPublishDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "indexengine_redis_publish_duration_seconds",
			Help:    "Redis record publish latency",
			Buckets: prometheus.DefBuckets,
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "indexengine_publish_failures_total",
			Help: "Failed Redis record publishes",
		}),

		LookupFallbackSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gateway_lookup_fallback_steps",
			Help:    "Backward steps taken by point-in-time lookups",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),
		LookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_lookup_misses_total",
			Help: "Point-in-time lookups that missed the fallback window",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_ws_clients",
			Help: "Connected WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.TickersFetched,
		m.TickersSkipped,
		m.TickersFailed,
		m.ObservationsTotal,
		m.FetchRetries,
		m.IngestDur,
		m.DatesComputed,
		m.EmptyDatesSkipped,
		m.CompositionChanges,
		m.ComputeDur,
		m.SQLiteCommitDur,
		m.RedisPublishDur,
		m.PublishFailures,
		m.LookupFallbackSteps,
		m.LookupMisses,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected  bool      `json:"redis_connected"`
	SQLiteOK        bool      `json:"sqlite_ok"`
	UniverseSize    int       `json:"universe_size"`
	LastIngestAt    time.Time `json:"last_ingest_at"`
	LastComputeDate string    `json:"last_compute_date"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetUniverseSize(n int) {
	h.mu.Lock()
	h.UniverseSize = n
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastIngestAt(t time.Time) {
	h.mu.Lock()
	h.LastIngestAt = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastComputeDate(d string) {
	h.mu.Lock()
	h.LastComputeDate = d
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Redis is best-effort; SQLite is the system of record.
	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	} else if !h.RedisConnected {
		overallStatus = "degraded"
	}

	ingestAge := ""
	if !h.LastIngestAt.IsZero() {
		ingestAge = time.Since(h.LastIngestAt).Round(time.Second).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		UniverseSize    int     `json:"universe_size"`
		LastIngestAt    string  `json:"last_ingest_at"`
		IngestAge       string  `json:"ingest_age"`
		LastComputeDate string  `json:"last_compute_date"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		UniverseSize:    h.UniverseSize,
		LastIngestAt:    h.LastIngestAt.Format(time.RFC3339),
		IngestAge:       ingestAge,
		LastComputeDate: h.LastComputeDate,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
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
