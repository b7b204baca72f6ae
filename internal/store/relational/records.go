// Package relational implements store.Records over database/sql for the
// postgres and sqlite drivers.
package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
)

// Dialect captures what differs between SQL engines.
type Dialect struct {
	Name string
	// Numbered rewrites ? placeholders to $1..$n.
	Numbered bool
	Schema   []string
}

func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate applies the dialect schema.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", d.Name, err)
		}
	}
	return nil
}

// Store is a store.Store backed by a *sql.DB.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	maxBytes int
}

// New wraps db; maxBytes is the per-record ceiling.
func New(db *sql.DB, d Dialect, maxBytes int) *Store {
	return &Store{db: db, dialect: d, maxBytes: maxBytes}
}

func (s *Store) Records() store.Records { return &records{s: s} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

type records struct{ s *Store }

func (r *records) q(query string) string { return r.s.dialect.rebind(query) }

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTS(v string) (time.Time, error) { return time.Parse(time.RFC3339Nano, v) }

func (r *records) UpsertProfile(ctx context.Context, id model.Identity) error {
	_, err := r.s.db.ExecContext(ctx, r.q(`
        INSERT INTO users (user_id, email, name, picture, doc_bytes)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            email = excluded.email,
            name = excluded.name,
            picture = excluded.picture
    `), id.UserID, id.Email, id.Name, id.Picture, store.ProfileSize(id))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *records) AppendSpeech(ctx context.Context, userID, topic string, e model.SpeechEntry) error {
	return r.append(ctx, userID, topic, `INSERT INTO speech_entries (user_id, created_at, body) VALUES (?, ?, ?)`, e.Timestamp, e.Text)
}

func (r *records) AppendScreenshot(ctx context.Context, userID, topic string, sh model.Screenshot) error {
	return r.append(ctx, userID, topic, `INSERT INTO screenshots (user_id, created_at, image_data) VALUES (?, ?, ?)`, sh.Timestamp, sh.ImageData)
}

// append guards the ceiling and inserts the item in one transaction.
func (r *records) append(ctx context.Context, userID, topic, insert string, at time.Time, payload string) (err error) {
	size := store.ItemSize(payload)

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, r.q(`
        INSERT INTO users (user_id, doc_bytes) VALUES (?, ?)
        ON CONFLICT (user_id) DO NOTHING
    `), userID, store.RecordOverhead); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	res, err := tx.ExecContext(ctx, r.q(`
        UPDATE users SET topic = ?, doc_bytes = doc_bytes + ?
        WHERE user_id = ? AND doc_bytes + ? <= ?
    `), topic, size, userID, size, r.s.maxBytes)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var cur int
		if err = tx.QueryRowContext(ctx, r.q(`SELECT doc_bytes FROM users WHERE user_id = ?`), userID).Scan(&cur); err != nil {
			return err
		}
		err = &model.CapacityError{Limit: r.s.maxBytes, Size: cur + size}
		return err
	}

	if _, err = tx.ExecContext(ctx, r.q(insert), userID, ts(at), payload); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return tx.Commit()
}

func (r *records) Get(ctx context.Context, userID string) (*model.UserRecord, error) {
	rec := &model.UserRecord{
		UserID:        userID,
		SpeechEntries: []model.SpeechEntry{},
		Screenshots:   []model.Screenshot{},
	}
	var evalJSON, evalAt sql.NullString
	err := r.s.db.QueryRowContext(ctx, r.q(`
        SELECT email, name, picture, topic, evaluation, evaluated_at
        FROM users WHERE user_id = ?
    `), userID).Scan(&rec.Email, &rec.Name, &rec.Picture, &rec.Topic, &evalJSON, &evalAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound()
	}
	if err != nil {
		return nil, err
	}
	if evalJSON.Valid {
		var ev model.Evaluation
		if err := json.Unmarshal([]byte(evalJSON.String), &ev); err != nil {
			return nil, fmt.Errorf("decode evaluation: %w", err)
		}
		at, _ := parseTS(evalAt.String)
		rec.GDEvaluation = &model.StoredEvaluation{Timestamp: at, Evaluation: ev}
	}

	rows, err := r.s.db.QueryContext(ctx, r.q(`SELECT created_at, body FROM speech_entries WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var at, body string
		if err := rows.Scan(&at, &body); err != nil {
			_ = rows.Close()
			return nil, err
		}
		t, err := parseTS(at)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		rec.SpeechEntries = append(rec.SpeechEntries, model.SpeechEntry{Timestamp: t, Text: body})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = r.s.db.QueryContext(ctx, r.q(`SELECT created_at, image_data FROM screenshots WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var at, data string
		if err := rows.Scan(&at, &data); err != nil {
			_ = rows.Close()
			return nil, err
		}
		t, err := parseTS(at)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		rec.Screenshots = append(rec.Screenshots, model.Screenshot{Timestamp: t, ImageData: data})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return rec, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}

func (r *records) SetEvaluation(ctx context.Context, userID string, ev model.StoredEvaluation) error {
	b, err := json.Marshal(ev.Evaluation)
	if err != nil {
		return err
	}
	res, err := r.s.db.ExecContext(ctx, r.q(`
        UPDATE users SET evaluation = ?, evaluated_at = ? WHERE user_id = ?
    `), string(b), ts(ev.Timestamp), userID)
	if err != nil {
		return fmt.Errorf("set evaluation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrUserNotFound()
	}
	return nil
}
