// Package index computes the equal-weight index: capitalization-ranked
// constituent selection, the index value itself, composition change
// detection, derived return series, and point-in-time lookup.
package index

import (
	"fmt"
	"log"
	"sort"

	"index-systemv1/internal/model"
)

// Config holds the engine's tunables. It is passed in at construction;
// nothing in this package reads ambient globals.
type Config struct {
	// ConstituentCount is K: the number of top-capitalization tickers
	// included in the index each day.
	ConstituentCount int
}

// Engine computes and persists one index record per trading date.
type Engine struct {
	obs model.ObservationReader
	idx model.IndexWriter
	cfg Config
}

// NewEngine creates an engine reading observations from obs and writing
// index records through idx.
func NewEngine(obs model.ObservationReader, idx model.IndexWriter, cfg Config) *Engine {
	return &Engine{obs: obs, idx: idx, cfg: cfg}
}

// ComputeForDate ranks the date's observations by market cap, selects the
// top K, computes the equal-weight value, and upserts the record.
//
// A date with no observations is not an error: it is a non-trading or
// missing-data day and yields (nil, nil) with nothing written.
//
// Ties in market cap break by ascending ticker, so output is reproducible
// regardless of store iteration order.
//
// The divisor is always the configured K, even when fewer observations
// exist, which understates the value on thin days. This matches the
// system's historical output and is kept deliberately.
func (e *Engine) ComputeForDate(date string) (*model.IndexRecord, error) {
	obs, err := e.obs.ObservationsOnDate(date)
	if err != nil {
		return nil, fmt.Errorf("observations on %s: %w", date, err)
	}
	if len(obs) == 0 {
		return nil, nil
	}

	sort.Slice(obs, func(i, j int) bool {
		if obs[i].MarketCap != obs[j].MarketCap {
			return obs[i].MarketCap > obs[j].MarketCap
		}
		return obs[i].Ticker < obs[j].Ticker
	})

	top := obs
	if len(top) > e.cfg.ConstituentCount {
		top = top[:e.cfg.ConstituentCount]
	}

	var totalPrice float64
	composition := make([]string, 0, len(top))
	for _, o := range top {
		totalPrice += o.SharePrice
		composition = append(composition, o.Ticker)
	}

	rec := model.IndexRecord{
		Date:        date,
		IndexValue:  totalPrice / float64(e.cfg.ConstituentCount),
		Composition: composition,
	}
	if err := e.idx.UpsertIndexRecord(rec); err != nil {
		return nil, fmt.Errorf("upsert index record %s: %w", date, err)
	}
	return &rec, nil
}

// ComputeRange computes every date in dates, ascending, and returns the
// records actually written. Empty dates are skipped silently; store errors
// abort the run.
func (e *Engine) ComputeRange(dates []string) ([]model.IndexRecord, error) {
	var written []model.IndexRecord
	for _, d := range dates {
		rec, err := e.ComputeForDate(d)
		if err != nil {
			return written, err
		}
		if rec == nil {
			continue
		}
		written = append(written, *rec)
	}
	log.Printf("[index] computed %d records over %d dates", len(written), len(dates))
	return written, nil
}
