// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The snippet store is a single file next to the app. No server to install,
// and ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without a C
// compiler. jmoiron/sqlx sits on top of database/sql to map rows into
// model.Snippet by their `db` tags instead of hand-written Scan calls.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/snippet-manager/internal/apperror"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sqlx.DB and implements repository.SnippetRepository.
type DB struct {
	conn *sqlx.DB
}

// New opens (or creates) the database at dbPath and makes sure the snippets
// table exists.
//
// dbPath examples:
//   - "snippets.db" → file next to the working directory (persistent)
//   - ":memory:"    → in-memory database (tests)
//
// Any failure here is returned as apperror.ErrStoreUnavailable.
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperror.StoreUnavailable(dbPath, err)
	}

	// ONE CONNECTION:
	// sql.DB is a pool. The app talks to the store over a single logical
	// connection, and an in-memory database only exists on the connection
	// that created it, so pin the pool to one.
	conn.SetMaxOpenConns(1)

	// sql.Open is lazy. Ping forces the file to actually open so a bad path
	// fails here and not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, apperror.StoreUnavailable(dbPath, err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, apperror.StoreUnavailable(dbPath, fmt.Errorf("setting WAL mode: %w", err))
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, apperror.StoreUnavailable(dbPath, fmt.Errorf("running migrations: %w", err))
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe on every start against an existing file.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			code        TEXT NOT NULL,
			language    TEXT NOT NULL,
			tags        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}
	return nil
}
