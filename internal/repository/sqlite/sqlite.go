// Package sqlite implements the repository interfaces on SQLite.
//
// WHY SQLITE?
// The whole system is one server and one small relational dataset; an
// embedded database keeps deployment to a single binary plus a single
// file, and ":memory:" gives tests a real SQL engine for free.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 needs CGo and a C toolchain; modernc.org/sqlite is a
// pure-Go translation of SQLite, so cross-compilation stays trivial.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/sakif/idealab/internal/policy"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the shared sql.DB connection pool. The per-entity stores
// (Ideas, Improvements, Users, Votes) are thin views over it; the pool and
// the migrations are owned here.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets concurrent reads proceed during a write — necessary for a
	// web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			provider    TEXT NOT NULL,
			provider_id TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL DEFAULT '',
			contact     TEXT NOT NULL DEFAULT '',
			admin       INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS ideas (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published  INTEGER NOT NULL DEFAULT 0,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			contact    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_ideas_user_id ON ideas(user_id);
		CREATE INDEX IF NOT EXISTS idx_ideas_published ON ideas(published);
	`)
	if err != nil {
		return fmt.Errorf("creating ideas table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS improvements (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published  INTEGER NOT NULL DEFAULT 0,
			module     TEXT NOT NULL,
			link       TEXT NOT NULL DEFAULT '',
			type       TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			contact    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_improvements_user_id ON improvements(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating improvements table: %w", err)
	}

	// The composite primary key is the one-vote-per-user-per-idea
	// invariant; a second INSERT for the same pair fails in the store, not
	// in application bookkeeping.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS idea_votes (
			user_id    TEXT NOT NULL REFERENCES users(id),
			idea_id    INTEGER NOT NULL REFERENCES ideas(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, idea_id)
		);
		CREATE INDEX IF NOT EXISTS idx_idea_votes_idea_id ON idea_votes(idea_id);
	`)
	if err != nil {
		return fmt.Errorf("creating idea_votes table: %w", err)
	}

	return nil
}

// visibilityClause renders a policy.Visibility as a WHERE fragment plus
// its bind values. The fragment text comes from this fixed table only;
// actor-derived values travel as parameters, never inside the string.
func visibilityClause(vis policy.Visibility) (string, []any) {
	switch vis.Scope {
	case policy.ScopeAll:
		return "1=1", nil
	case policy.ScopePublished:
		return "published = 1", nil
	case policy.ScopePublishedOrOwn:
		return "(published = 1 OR user_id = ?)", []any{vis.OwnerID}
	case policy.ScopeOwn:
		return "user_id = ?", []any{vis.OwnerID}
	default: // ScopeNone
		return "0=1", nil
	}
}
