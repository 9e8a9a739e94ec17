package gateway

// RecordOut is the REST response type for index records.
type RecordOut struct {
	Date        string   `json:"date"`
	IndexValue  float64  `json:"index_value"`
	Composition []string `json:"composition"`
}

// LookupOut is the response for /api/index/at: the record found plus the
// date actually used when the fallback stepped backward.
type LookupOut struct {
	Record   RecordOut `json:"record"`
	DateUsed string    `json:"date_used"`
}

// ReturnPoint is one element of /api/index/returns. DailyReturn is null for
// the first record of the window (no prior value).
type ReturnPoint struct {
	Date             string   `json:"date"`
	IndexValue       float64  `json:"index_value"`
	DailyReturn      *float64 `json:"daily_return"`
	CumulativeReturn float64  `json:"cumulative_return"`
}

// ChangesOut is the response for /api/index/changes.
type ChangesOut struct {
	ChangeDates []string    `json:"change_dates"`
	Changes     []ChangeOut `json:"changes"`
}

// ChangeOut is one composition-change event.
type ChangeOut struct {
	Date    string   `json:"date"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// RecomputeRequest is the body of POST /api/admin/recompute. An empty From
// means the engine's default lookback window; an empty To is unbounded.
type RecomputeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}
