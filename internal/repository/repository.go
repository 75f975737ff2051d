// Package repository provides database access layer.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Repository provides database access methods.
type Repository struct {
	db *sql.DB
}

// Open opens (and creates if needed) the SQLite database at path.
// The parent directory is created when missing.
func Open(ctx context.Context, path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection: SQLite serializes writers anyway, and pinning
	// one conn keeps the pragmas below in effect for every query.
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

// InitSchema creates the messages table and its indexes if missing.
func (r *Repository) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			message_id  TEXT PRIMARY KEY,
			from_msisdn TEXT NOT NULL,
			to_msisdn   TEXT NOT NULL,
			ts          TEXT NOT NULL,
			text        TEXT,
			created_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_msisdn);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Ready reports whether the messages table exists and is queryable.
// Any underlying access failure is reported as not-ready, never as an error.
func (r *Repository) Ready(ctx context.Context) bool {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'messages'`,
	).Scan(&name)
	return err == nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
