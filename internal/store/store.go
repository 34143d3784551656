// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store provides the SQLite-backed candidate sources for the
// search engine, one per entity table, plus the static navigation
// registry.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// entityTables lists the per-type candidate tables. They share one
// schema; the platform's CRUD services own the writes, this service only
// reads.
var entityTables = []string{"tasks", "projects", "grants", "publications"}

// updatedAtLayout pads fractional seconds to fixed width so updated_at
// TEXT values sort lexicographically in timestamp order.
const updatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens or creates the backing database and ensures the entity
// schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating entity schema: %w", err)
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	for _, table := range entityTables {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT,
			category TEXT,
			priority TEXT,
			updated_at TEXT NOT NULL
		)`, table)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table %s: %w", table, err)
		}

		idx := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_workspace ON %s(workspace_id, updated_at)`,
			table, table)
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("indexing table %s: %w", table, err)
		}
	}
	return nil
}
