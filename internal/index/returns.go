package index

import (
	"math"

	"index-systemv1/internal/model"
)

// DailyReturns computes the day-over-day percent return for each record of an
// ascending series. The first element is NaN: there is no prior value.
// Derived on every call, never persisted, so it cannot drift from the
// stored series.
func DailyReturns(series []model.IndexRecord) []float64 {
	returns := make([]float64, len(series))
	for i := range series {
		if i == 0 {
			returns[i] = math.NaN()
			continue
		}
		prev := series[i-1].IndexValue
		returns[i] = (series[i].IndexValue - prev) / prev * 100
	}
	return returns
}

// CumulativeReturns computes percent return against the first record of the
// queried window. The baseline shifts with the window: callers asking for a
// different range get a different baseline, not an absolute-origin return.
func CumulativeReturns(series []model.IndexRecord) []float64 {
	returns := make([]float64, len(series))
	if len(series) == 0 {
		return returns
	}
	base := series[0].IndexValue
	for i := range series {
		returns[i] = (series[i].IndexValue - base) / base * 100
	}
	return returns
}

// Stats summarizes the tail of an index series for display.
type Stats struct {
	Date           string  `json:"date"` // latest record's date
	LatestValue    float64 `json:"latest_value"`
	DailyChange    float64 `json:"daily_change"`
	DailyReturnPct float64 `json:"daily_return_pct"`
}

// ComputeStats derives latest-value statistics from an ascending series.
// Returns nil when fewer than two records exist.
func ComputeStats(series []model.IndexRecord) *Stats {
	if len(series) < 2 {
		return nil
	}
	last := series[len(series)-1]
	prev := series[len(series)-2]
	change := last.IndexValue - prev.IndexValue
	return &Stats{
		Date:           last.Date,
		LatestValue:    last.IndexValue,
		DailyChange:    change,
		DailyReturnPct: change / prev.IndexValue * 100,
	}
}
