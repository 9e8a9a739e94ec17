package model

import (
	"encoding/json"
	"strings"
)

// CompositionSeparator joins the ordered constituent tickers into the single
// TEXT column of the index_records table.
const CompositionSeparator = ","

// IndexRecord is the computed equal-weight index value for one trading date.
// Composition holds the constituent tickers ordered by descending market cap.
type IndexRecord struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	IndexValue  float64  `json:"index_value"`
	Composition []string `json:"composition"`
}

// JoinComposition encodes the ordered constituent list for storage.
func (r *IndexRecord) JoinComposition() string {
	return strings.Join(r.Composition, CompositionSeparator)
}

// SplitComposition decodes a stored composition string into the ordered list.
// An empty string yields an empty (non-nil) list.
func SplitComposition(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, CompositionSeparator)
}

// CompositionSet returns the constituents as a set, discarding order.
// Used by the change detector, where only set membership counts.
func (r *IndexRecord) CompositionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Composition))
	for _, t := range r.Composition {
		set[t] = struct{}{}
	}
	return set
}

// JSON returns the JSON-encoded record (ignoring errors for hot-path usage).
func (r *IndexRecord) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}
