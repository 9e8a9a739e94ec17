// Package ingest orchestrates one ingestion pass: fetch the ticker universe,
// fetch and normalize each ticker's raw series, and upsert the resulting
// observations into the store.
//
// Failure policy: a failing ticker is isolated (logged, counted, skipped) and
// never aborts the batch. A failing universe fetch is fatal to the whole
// pass, as is a store write failure.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"index-systemv1/internal/logger"
	"index-systemv1/internal/metrics"
	"index-systemv1/internal/model"
	"index-systemv1/internal/normalizer"
)

// ErrStoreUnavailable marks a store write failure. Unlike a provider error
// it is shared-infrastructure: one ticker failing to commit means every
// remaining ticker would too, so the pass aborts.
var ErrStoreUnavailable = errors.New("store unavailable")

// UniverseProvider supplies the ticker universe, largest companies first.
type UniverseProvider interface {
	// Universe returns up to limit ticker symbols.
	Universe(ctx context.Context, limit int) ([]string, error)
}

// HistoryProvider supplies one ticker's raw history plus the current
// shares-outstanding figure. shares is 0 when the provider has no figure.
type HistoryProvider interface {
	History(ctx context.Context, ticker, period string) (bars []model.RawBar, shares float64, err error)
}

// Config holds the ingestion tunables.
type Config struct {
	UniverseLimit int    // how many tickers to request from the universe provider
	HistoryPeriod string // provider lookback range, e.g. "1y"
	FetchRetries  int    // attempts per provider call (min 1)
	RetryBackoff  time.Duration
}

// Result is the per-ticker outcome of a pass. Exactly one of Observations,
// Skipped, or Err carries the outcome.
type Result struct {
	Ticker       string
	Observations int
	Skipped      bool // shares outstanding unavailable
	Err          error
}

// Report summarizes one ingestion pass.
type Report struct {
	UniverseSize int
	Fetched      int
	Skipped      int
	Failed       int
	Observations int
	Results      []Result
	Elapsed      time.Duration
}

// Service runs ingestion passes.
type Service struct {
	universe UniverseProvider
	history  HistoryProvider
	store    model.ObservationWriter
	cfg      Config
	prom     *metrics.Metrics // optional
}

// New creates an ingestion service. prom may be nil.
func New(universe UniverseProvider, history HistoryProvider, store model.ObservationWriter, cfg Config, prom *metrics.Metrics) *Service {
	if cfg.FetchRetries < 1 {
		cfg.FetchRetries = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	return &Service{universe: universe, history: history, store: store, cfg: cfg, prom: prom}
}

// Run executes one full pass. Returns an error only for fatal conditions:
// universe fetch failure, store failure, or context cancellation.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	tickers, err := s.fetchUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	log.Printf("[ingest] universe: %d tickers", len(tickers))

	report := &Report{UniverseSize: len(tickers)}
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		res := s.ingestTicker(ctx, ticker)
		report.Results = append(report.Results, res)
		switch {
		case errors.Is(res.Err, ErrStoreUnavailable):
			report.Failed++
			report.Elapsed = time.Since(start)
			s.count(func(m *metrics.Metrics) { m.TickersFailed.Inc() })
			log.Printf("[ingest] aborting pass on %s: %v", ticker, res.Err)
			return report, res.Err
		case res.Err != nil:
			report.Failed++
			s.count(func(m *metrics.Metrics) { m.TickersFailed.Inc() })
			log.Printf("[ingest] error fetching data for %s: %v", ticker, res.Err)
		case res.Skipped:
			report.Skipped++
			s.count(func(m *metrics.Metrics) { m.TickersSkipped.Inc() })
			log.Printf("[ingest] skipping %s: shares outstanding unavailable", ticker)
		default:
			report.Fetched++
			report.Observations += res.Observations
			s.count(func(m *metrics.Metrics) {
				m.TickersFetched.Inc()
				m.ObservationsTotal.Add(float64(res.Observations))
			})
		}
	}

	report.Elapsed = time.Since(start)
	s.count(func(m *metrics.Metrics) { m.IngestDur.Observe(report.Elapsed.Seconds()) })
	log.Printf("[ingest] pass complete: %d fetched, %d skipped, %d failed, %d observations in %v",
		report.Fetched, report.Skipped, report.Failed, report.Observations, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// ingestTicker fetches, normalizes, and stores one ticker's series.
// Store failures come back wrapped in ErrStoreUnavailable so Run can tell
// them apart from provider errors and abort.
func (s *Service) ingestTicker(ctx context.Context, ticker string) Result {
	ctx = logger.WithTraceID(ctx, logger.IngestTrace(ticker, time.Now()))

	var bars []model.RawBar
	var shares float64

	err := s.withRetry(ctx, func() error {
		var ferr error
		bars, shares, ferr = s.history.History(ctx, ticker, s.cfg.HistoryPeriod)
		return ferr
	})
	if err != nil {
		return Result{Ticker: ticker, Err: fmt.Errorf("fetch %s (trace %s): %w", ticker, logger.TraceID(ctx), err)}
	}

	obs, err := normalizer.Normalize(ticker, bars, shares)
	if err != nil {
		if errors.Is(err, normalizer.ErrDataUnavailable) {
			return Result{Ticker: ticker, Skipped: true}
		}
		return Result{Ticker: ticker, Err: err}
	}

	commitStart := time.Now()
	if err := s.store.UpsertObservations(obs); err != nil {
		return Result{Ticker: ticker, Err: fmt.Errorf("upsert observations: %w: %v", ErrStoreUnavailable, err)}
	}
	s.count(func(m *metrics.Metrics) { m.SQLiteCommitDur.Observe(time.Since(commitStart).Seconds()) })

	return Result{Ticker: ticker, Observations: len(obs)}
}

func (s *Service) fetchUniverse(ctx context.Context) ([]string, error) {
	var tickers []string
	err := s.withRetry(ctx, func() error {
		var ferr error
		tickers, ferr = s.universe.Universe(ctx, s.cfg.UniverseLimit)
		return ferr
	})
	return tickers, err
}

// withRetry runs fn up to cfg.FetchRetries times with linear backoff.
// Provider calls are the only network boundary in the pipeline.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.FetchRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == s.cfg.FetchRetries || ctx.Err() != nil {
			break
		}
		s.count(func(m *metrics.Metrics) { m.FetchRetries.Inc() })
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (s *Service) count(fn func(*metrics.Metrics)) {
	if s.prom != nil {
		fn(s.prom)
	}
}
