package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Vijaykv5/Intereractive-GD/internal/store/relational"
)

// Dialect is the SQLite schema and placeholder style.
var Dialect = relational.Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id      TEXT PRIMARY KEY,
            email        TEXT NOT NULL DEFAULT '',
            name         TEXT NOT NULL DEFAULT '',
            picture      TEXT NOT NULL DEFAULT '',
            topic        TEXT NOT NULL DEFAULT '',
            doc_bytes    INTEGER NOT NULL DEFAULT 0,
            evaluation   TEXT,
            evaluated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS speech_entries (
            id         INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id    TEXT NOT NULL REFERENCES users(user_id),
            created_at TEXT NOT NULL,
            body       TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS speech_entries_user_idx ON speech_entries (user_id, id)`,
		`CREATE TABLE IF NOT EXISTS screenshots (
            id         INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id    TEXT NOT NULL REFERENCES users(user_id),
            created_at TEXT NOT NULL,
            image_data TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS screenshots_user_idx ON screenshots (user_id, id)`,
	},
}

// Open opens (or creates) a SQLite database at the given path with WAL journaling.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; appends run in transactions
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens path, applies the schema and returns the store.
func New(ctx context.Context, path string, maxBytes int) (*relational.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := relational.Migrate(ctx, db, Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return relational.New(db, Dialect, maxBytes), nil
}
