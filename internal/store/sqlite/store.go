// Package sqlite persists observations and index records in SQLite.
//
// The pipeline is single-writer and batch-oriented: one ingest or compute
// pass writes at a time, so the connection pool is capped at one open
// connection and every batch goes through a single transaction. Readers see
// the last committed write.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	Path string // path to the database file, e.g. "data/index.db"
}

// Store owns the observations and index_records tables.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database, enables WAL mode, and creates the schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer discipline
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.Path)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			ticker           TEXT NOT NULL,
			date             TEXT NOT NULL,
			share_price      REAL NOT NULL,
			market_cap       REAL NOT NULL,
			effective_shares_outstanding REAL NOT NULL,
			PRIMARY KEY (ticker, date)
		);

		CREATE INDEX IF NOT EXISTS idx_observations_date ON observations (date);

		CREATE TABLE IF NOT EXISTS index_records (
			date        TEXT PRIMARY KEY,
			index_value REAL NOT NULL,
			composition TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
