// Package store keeps the operator-facing diagnostic record in SQLite:
// every model call with its raw request and response, quiz lifecycle
// events, and the last quiz session snapshot.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// Events returns the event log backed by this store.
func (s *Store) Events() *EventLog {
	return &EventLog{drv: s.drv, seq: s.seq}
}

// Snapshots returns the session snapshot repository.
func (s *Store) Snapshots() *SnapshotRepo {
	return &SnapshotRepo{drv: s.drv, seq: s.seq}
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		purpose TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
	`CREATE TABLE IF NOT EXISTS quiz_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		source_name TEXT NOT NULL DEFAULT '',
		page_count INTEGER NOT NULL DEFAULT 0,
		question_count INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_events_session ON quiz_events (session_id)`,
	`CREATE TABLE IF NOT EXISTS session_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		data TEXT NOT NULL
	)`,
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range ddl {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PDFQUIZ_DB environment variable
// 2. $XDG_DATA_HOME/pdfquiz/pdfquiz.db
// 3. ~/.local/share/pdfquiz/pdfquiz.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PDFQUIZ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "pdfquiz", "pdfquiz.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
