package model

import (
	"encoding/json"
	"strings"
)

// Observation is one cleaned data point for a single ticker on a single
// trading date. Prices and share counts are split-adjusted by the normalizer
// before they reach the store.
type Observation struct {
	Ticker          string  `json:"ticker"`
	Date            string  `json:"date"`                         // YYYY-MM-DD
	SharePrice      float64 `json:"share_price"`                  // close price
	MarketCap       float64 `json:"market_cap"`                   // share_price * effective shares
	EffectiveShares float64 `json:"effective_shares_outstanding"` // shares outstanding as of Date
}

// Key returns the unique storage key for this observation: "ticker:date".
func (o *Observation) Key() string {
	return o.Ticker + ":" + o.Date
}

// JSON returns the JSON-encoded observation (ignoring errors for hot-path usage).
func (o *Observation) JSON() []byte {
	b, _ := json.Marshal(o)
	return b
}

// RawBar is a single point of an unadjusted provider series: the close price
// for a date plus the split event that took effect on that date, if any.
// SplitRatio is 0 when no split occurred.
type RawBar struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Close      float64 `json:"close"`
	SplitRatio float64 `json:"split_ratio"`
}

// NormalizeTicker converts a provider symbol into its storage form:
// uppercase, with the fused-class delimiter "/" replaced by "-"
// (e.g. "BRK/B" -> "BRK-B").
func NormalizeTicker(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", "-"))
}
