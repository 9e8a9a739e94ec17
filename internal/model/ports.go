package model

// ── Storage Port Interfaces ──
// These interfaces decouple the computation pipeline from the concrete SQLite
// store. Writers mutate, readers are the query surface handed to downstream
// consumers; no consumer holds raw query access.

// ObservationWriter ingests normalized per-ticker observations.
type ObservationWriter interface {
	// UpsertObservations inserts or replaces a batch keyed by (ticker, date).
	// Re-inserting an existing key replaces the prior row.
	UpsertObservations(batch []Observation) error
}

// ObservationReader reads stored observations.
type ObservationReader interface {
	// ObservationsOnDate returns every ticker's observation for exactly that
	// date. An empty slice means no data for the date.
	ObservationsOnDate(date string) ([]Observation, error)

	// ObservationHistory returns one ticker's full series, ascending by date.
	ObservationHistory(ticker string) ([]Observation, error)

	// ObservationDates returns the distinct dates in [from, to] that have at
	// least one observation, ascending.
	ObservationDates(from, to string) ([]string, error)
}

// IndexWriter persists computed index records.
type IndexWriter interface {
	// UpsertIndexRecord inserts or replaces the record for its date.
	UpsertIndexRecord(rec IndexRecord) error
}

// IndexReader reads the stored index series.
type IndexReader interface {
	// IndexRecordAt returns the record for exactly this date, or nil if absent.
	IndexRecordAt(date string) (*IndexRecord, error)

	// IndexSeries returns records with date in [from, to], ascending.
	// Empty bounds mean unbounded on that side.
	IndexSeries(from, to string) ([]IndexRecord, error)
}
