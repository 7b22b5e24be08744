package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database at the given path and configures the
// connection pool.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the offers schema. Idempotent.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS offers (
			offer_id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL,
			buyer_name TEXT NOT NULL,
			buyer_email TEXT NOT NULL,
			buyer_phone TEXT NOT NULL,
			offer_price REAL NOT NULL,
			contingencies TEXT NOT NULL,
			closing_date TEXT NOT NULL,
			additional_terms TEXT,
			status TEXT NOT NULL DEFAULT 'pending_review',
			counter_offer_price REAL,
			response_notes TEXT,
			submitted_at DATETIME NOT NULL,
			last_updated DATETIME NOT NULL,
			responded_at DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_offers_property_id ON offers(property_id);`,
		`CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status);`,
		`CREATE INDEX IF NOT EXISTS idx_offers_submitted_at ON offers(submitted_at DESC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
