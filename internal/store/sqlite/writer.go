package sqlite

import (
	"fmt"

	"index-systemv1/internal/model"
)

// UpsertObservations inserts or replaces a batch of observations in a single
// transaction, keyed by (ticker, date). Re-running the same batch leaves
// exactly one row per key with the latest values.
func (s *Store) UpsertObservations(batch []model.Observation) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO observations (ticker, date, share_price, market_cap, effective_shares_outstanding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare observations: %w", err)
	}
	defer stmt.Close()

	for _, o := range batch {
		if _, err := stmt.Exec(o.Ticker, o.Date, o.SharePrice, o.MarketCap, o.EffectiveShares); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert observation %s: %w", o.Key(), err)
		}
	}

	return tx.Commit()
}

// UpsertIndexRecord inserts or replaces the index record for its date.
func (s *Store) UpsertIndexRecord(rec model.IndexRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO index_records (date, index_value, composition)
		VALUES (?, ?, ?)
	`, rec.Date, rec.IndexValue, rec.JoinComposition())
	if err != nil {
		return fmt.Errorf("sqlite insert index record %s: %w", rec.Date, err)
	}
	return nil
}
