package index

import (
	"fmt"

	"index-systemv1/internal/model"
)

// DefaultFallbackDays bounds the backward search of Lookup. Five calendar
// days cover a weekend plus an adjacent holiday without a trading-calendar
// table.
const DefaultFallbackDays = 5

// LookupMissError reports that no index record exists within the fallback
// window. LastTried is the earliest date actually queried.
type LookupMissError struct {
	Requested string
	LastTried string
	Steps     int
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("no index record for %s within %d prior days (last tried %s)",
		e.Requested, e.Steps, e.LastTried)
}

// Lookup resolves a point-in-time query. If no record exists for date, it
// steps backward one calendar day at a time, up to maxSteps additional
// queries, and returns the first hit together with the date actually used.
// A miss is surfaced as *LookupMissError, never as a fabricated zero record.
func Lookup(idx model.IndexReader, date string, maxSteps int) (*model.IndexRecord, string, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultFallbackDays
	}

	current := date
	for step := 0; step <= maxSteps; step++ {
		rec, err := idx.IndexRecordAt(current)
		if err != nil {
			return nil, "", fmt.Errorf("index record at %s: %w", current, err)
		}
		if rec != nil {
			return rec, current, nil
		}
		if step == maxSteps {
			break
		}
		prev, err := model.PrevDay(current)
		if err != nil {
			return nil, "", fmt.Errorf("invalid date %q: %w", current, err)
		}
		current = prev
	}
	return nil, "", &LookupMissError{Requested: date, LastTried: current, Steps: maxSteps}
}
