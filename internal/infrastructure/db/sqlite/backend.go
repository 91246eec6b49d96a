// Package sqlite provides the local persistence backend. Every collection
// lives in a single records table as JSON documents.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	payload    TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS records_collection ON records (collection);
`

// Backend is a synchronous ports.Backend on SQLite. Unlike the remote
// backend it keeps the activity collection.
type Backend struct {
	db *sql.DB
}

var _ ports.Backend = (*Backend)(nil)
var _ ports.CapabilityReporter = (*Backend)(nil)

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Backend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := ":memory:"
	if path != dsn {
		dsn = "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes
	// writers on file databases.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Capabilities() ports.Capabilities {
	return ports.Capabilities{DurableActivity: true}
}

func (b *Backend) Get(ctx context.Context, c ports.Collection, f ports.Filter) ([]ports.Record, error) {
	query := `SELECT payload FROM records WHERE collection = ?`
	args := []any{string(c)}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "id" {
			query += ` AND id = ?`
			args = append(args, fmt.Sprint(f[k]))
			continue
		}
		query += ` AND json_extract(payload, ?) = ?`
		args = append(args, "$."+k, sqlValue(f[k]))
	}
	query += ` ORDER BY rowid`

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c, err)
	}
	defer rows.Close()

	out := []ports.Record{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, err)
		}
		var rec ports.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c, err)
	}
	return out, nil
}

func (b *Backend) Put(ctx context.Context, c ports.Collection, r ports.Record) (string, error) {
	rec := make(ports.Record, len(r)+1)
	for k, v := range r {
		rec[k] = v
	}
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", c, id, err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, payload) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET payload = excluded.payload`,
		string(c), id, string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", c, id, err)
	}
	return id, nil
}

// Update merges p into the stored document inside a transaction.
func (b *Backend) Update(ctx context.Context, c ports.Collection, id string, p ports.Patch) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s/%s: %w", c, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var payload string
	err = tx.QueryRowContext(ctx, `SELECT payload FROM records WHERE collection = ? AND id = ?`, string(c), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", c, id, err)
	}

	var rec ports.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return fmt.Errorf("decode %s/%s: %w", c, id, err)
	}
	for k, v := range p {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	next, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c, id, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE records SET payload = ? WHERE collection = ? AND id = ?`, string(next), string(c), id); err != nil {
		return fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	return tx.Commit()
}

func (b *Backend) Remove(ctx context.Context, c ports.Collection, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, string(c), id)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", c, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", c, id, err)
	}
	if n == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

// sqlValue converts a filter value to what json_extract yields for it.
func sqlValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return v
	}
}
