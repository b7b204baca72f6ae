package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Vijaykv5/Intereractive-GD/internal/store/relational"
)

// Dialect is the Postgres schema and placeholder style.
var Dialect = relational.Dialect{
	Name:     "postgres",
	Numbered: true,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id      TEXT PRIMARY KEY,
            email        TEXT NOT NULL DEFAULT '',
            name         TEXT NOT NULL DEFAULT '',
            picture      TEXT NOT NULL DEFAULT '',
            topic        TEXT NOT NULL DEFAULT '',
            doc_bytes    BIGINT NOT NULL DEFAULT 0,
            evaluation   TEXT,
            evaluated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS speech_entries (
            id         BIGSERIAL PRIMARY KEY,
            user_id    TEXT NOT NULL REFERENCES users(user_id),
            created_at TEXT NOT NULL,
            body       TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS speech_entries_user_idx ON speech_entries (user_id, id)`,
		`CREATE TABLE IF NOT EXISTS screenshots (
            id         BIGSERIAL PRIMARY KEY,
            user_id    TEXT NOT NULL REFERENCES users(user_id),
            created_at TEXT NOT NULL,
            image_data TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS screenshots_user_idx ON screenshots (user_id, id)`,
	},
}

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn, applies the schema and returns the store.
func New(ctx context.Context, dsn string, maxBytes int) (*relational.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := relational.Migrate(ctx, db, Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return relational.New(db, Dialect, maxBytes), nil
}
