// Package store keeps podseg's state in a single sqlite database: the
// history of segmentation runs and a cache of window embeddings.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	input       TEXT NOT NULL,
	output      TEXT NOT NULL DEFAULT '',
	segments    INTEGER NOT NULL,
	topics      INTEGER NOT NULL,
	boundaries  TEXT NOT NULL DEFAULT '[]',
	threshold   REAL NOT NULL,
	provider    TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS embeddings (
	model      TEXT NOT NULL,
	key        TEXT NOT NULL,
	dims       INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (model, key)
);
`

// Store wraps the sqlite database.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded segmentation.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Input      string
	Output     string
	Segments   int
	Topics     int
	Boundaries []int
	Threshold  float64
	Provider   string
	Duration   time.Duration
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// RecordRun inserts r, assigning an ID and timestamp when unset.
func (s *Store) RecordRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Boundaries == nil {
		r.Boundaries = []int{}
	}
	bounds, err := json.Marshal(r.Boundaries)
	if err != nil {
		return r, fmt.Errorf("marshal boundaries: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO runs
		(id, created_at, input, output, segments, topics, boundaries, threshold, provider, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Input, r.Output,
		r.Segments, r.Topics, string(bounds), r.Threshold, r.Provider, r.Duration.Milliseconds())
	if err != nil {
		return r, fmt.Errorf("record run: %w", err)
	}
	return r, nil
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, created_at, input, output, segments, topics, boundaries, threshold, provider, duration_ms
		FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			created  string
			bounds   string
			duration int64
		)
		if err := rows.Scan(&r.ID, &created, &r.Input, &r.Output, &r.Segments, &r.Topics,
			&bounds, &r.Threshold, &r.Provider, &duration); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		_ = json.Unmarshal([]byte(bounds), &r.Boundaries)
		r.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of recorded runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}
