// Package db is the sqlite metadata store recording exported datasets
// and pipeline runs.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS datasets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    num_documents INTEGER,
    num_tokens INTEGER,
    languages TEXT,
    hash TEXT,
    output_dir TEXT
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    status TEXT
);

CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);
`

// DB wraps the sqlite connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the store at path and ensures the schema.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the filesystem location of the store.
func (db *DB) Path() string { return db.path }
