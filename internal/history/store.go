package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one pipeline outcome
type Record struct {
	ID         int64
	CreatedAt  time.Time
	Success    bool
	SpokenText string
	Sign       string
	Label      int
	GIFURL     string
	Error      string
	Stage      string
	DurationMS int64
}

// Store persists records in a SQLite database
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	spoken_text TEXT NOT NULL DEFAULT '',
	sign        TEXT NOT NULL DEFAULT '',
	label       INTEGER NOT NULL DEFAULT -1,
	gif_url     TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	stage       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_outcomes_created ON outcomes(created_at);
`

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Serialize writers from concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores r and returns its ID. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, r Record) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (created_at, success, spoken_text, sign, label, gif_url, error, stage, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt.UnixMilli(), r.Success, r.SpokenText, r.Sign, r.Label,
		r.GIFURL, r.Error, r.Stage, r.DurationMS)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history record: %w", err)
	}

	return res.LastInsertId()
}

// Recent returns up to limit records, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, success, spoken_text, sign, label, gif_url, error, stage, duration_ms
		 FROM outcomes ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var created int64
		if err := rows.Scan(&r.ID, &created, &r.Success, &r.SpokenText, &r.Sign, &r.Label,
			&r.GIFURL, &r.Error, &r.Stage, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
