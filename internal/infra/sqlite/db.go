// Package sqlite persists the submission pipeline's durable state —
// leaderboard, cheat log, edge cases, training samples, and model
// versions — on top of modernc.org/sqlite (a CGo-free driver, so the
// binary stays a single static executable). Schema is applied as a flat
// list of idempotent migration statements run in order at startup.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB configured for SQLite's single-writer model.
type DB struct {
	db *sql.DB
}

// NewDB opens path (or an in-memory database for ":memory:") and applies
// every registered migration.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// SQLite allows only one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under concurrent submission handling.
	conn.SetMaxOpenConns(1)

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	for _, group := range [][]string{
		leaderboardMigrations(),
		cheatLogMigrations(),
		edgeCaseMigrations(),
		trainingSampleMigrations(),
		modelRegistryMigrations(),
	} {
		for _, stmt := range group {
			if _, err := db.db.Exec(stmt); err != nil {
				return fmt.Errorf("sqlite: migrate: %w", err)
			}
		}
	}
	return nil
}
