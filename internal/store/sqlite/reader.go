package sqlite

import (
	"database/sql"
	"fmt"

	"index-systemv1/internal/model"
)

// ObservationsOnDate returns all tickers' observations for exactly that date.
// An empty slice means no data exists for the date.
func (s *Store) ObservationsOnDate(date string) ([]model.Observation, error) {
	rows, err := s.db.Query(`
		SELECT ticker, date, share_price, market_cap, effective_shares_outstanding
		FROM observations
		WHERE date = ?
	`, date)
	if err != nil {
		return nil, fmt.Errorf("sqlite query observations: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

// ObservationHistory returns one ticker's full series, ascending by date.
func (s *Store) ObservationHistory(ticker string) ([]model.Observation, error) {
	rows, err := s.db.Query(`
		SELECT ticker, date, share_price, market_cap, effective_shares_outstanding
		FROM observations
		WHERE ticker = ?
		ORDER BY date ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("sqlite query observation history: %w", err)
	}
	defer rows.Close()
	return scanObservations(rows)
}

// ObservationDates returns the distinct dates in [from, to] with at least one
// observation, ascending. Empty bounds are unbounded.
func (s *Store) ObservationDates(from, to string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT date FROM observations
		WHERE (? = '' OR date >= ?) AND (? = '' OR date <= ?)
		ORDER BY date ASC
	`, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("sqlite query observation dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("sqlite scan observation date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// IndexRecordAt returns the index record for exactly this date, or nil when
// absent. Absence is not an error; the lookup fallback decides what to do.
func (s *Store) IndexRecordAt(date string) (*model.IndexRecord, error) {
	var rec model.IndexRecord
	var composition string
	err := s.db.QueryRow(`
		SELECT date, index_value, composition
		FROM index_records
		WHERE date = ?
	`, date).Scan(&rec.Date, &rec.IndexValue, &composition)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite query index record: %w", err)
	}
	rec.Composition = model.SplitComposition(composition)
	return &rec, nil
}

// IndexSeries returns index records with date in [from, to], ascending.
// Empty bounds are unbounded.
func (s *Store) IndexSeries(from, to string) ([]model.IndexRecord, error) {
	rows, err := s.db.Query(`
		SELECT date, index_value, composition
		FROM index_records
		WHERE (? = '' OR date >= ?) AND (? = '' OR date <= ?)
		ORDER BY date ASC
	`, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("sqlite query index series: %w", err)
	}
	defer rows.Close()

	var series []model.IndexRecord
	for rows.Next() {
		var rec model.IndexRecord
		var composition string
		if err := rows.Scan(&rec.Date, &rec.IndexValue, &composition); err != nil {
			return nil, fmt.Errorf("sqlite scan index record: %w", err)
		}
		rec.Composition = model.SplitComposition(composition)
		series = append(series, rec)
	}
	return series, rows.Err()
}

func scanObservations(rows *sql.Rows) ([]model.Observation, error) {
	var obs []model.Observation
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.Ticker, &o.Date, &o.SharePrice, &o.MarketCap, &o.EffectiveShares); err != nil {
			return nil, fmt.Errorf("sqlite scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}
