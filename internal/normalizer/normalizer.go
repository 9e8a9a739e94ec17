// Package normalizer converts raw per-ticker provider series into clean,
// split-adjusted observations ready for the store.
//
// The cumulative split factor is a running product over the series in
// ascending date order: it starts at 1 and is multiplied by each split ratio
// encountered, so it is monotonic non-decreasing. Dividing today's shares
// outstanding by the factor yields the share count as it stood on each past
// date, which makes historical market caps comparable across splits.
package normalizer

import (
	"errors"
	"fmt"
	"sort"

	"index-systemv1/internal/model"
)

// ErrDataUnavailable is returned when the current shares-outstanding figure
// for a ticker cannot be obtained. The ticker is then skipped entirely;
// there is no partial ingestion.
var ErrDataUnavailable = errors.New("shares outstanding data not available")

// Normalize builds the split-adjusted observation series for one ticker.
// bars may arrive in any order; output is ascending by date with no gap-fill
// for missing trading days. currentShares must be the shares-outstanding
// figure as of now, not as of any historical date.
func Normalize(ticker string, bars []model.RawBar, currentShares float64) ([]model.Observation, error) {
	if currentShares <= 0 {
		return nil, fmt.Errorf("%w for %s", ErrDataUnavailable, ticker)
	}

	sorted := make([]model.RawBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	obs := make([]model.Observation, 0, len(sorted))
	factor := 1.0
	for _, bar := range sorted {
		// No split event is a multiplicative identity.
		if bar.SplitRatio > 0 {
			factor *= bar.SplitRatio
		}
		effective := currentShares / factor
		obs = append(obs, model.Observation{
			Ticker:          ticker,
			Date:            bar.Date,
			SharePrice:      bar.Close,
			EffectiveShares: effective,
			MarketCap:       bar.Close * effective,
		})
	}
	return obs, nil
}
