// Package database provides the embedded SQLite client, schema migration
// with table signatures, and the interprocess migration lock.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Config holds database client configuration.
type Config struct {
	// Path is the database file. Sibling WAL/shared-memory files are created
	// next to it by the engine.
	Path string

	// StrictSignatures makes a stored-signature mismatch fatal during
	// migration. Non-strict mode logs and re-issues the idempotent DDL.
	StrictSignatures bool

	// BusyTimeout bounds how long a statement waits on a locked database.
	BusyTimeout time.Duration
}

// Client wraps the single embedded database connection.
//
// The connection is autocommit: every service write is a single statement,
// so no explicit transaction boundary is needed. Pragmas are applied exactly
// once, right after the connection opens.
type Client struct {
	db               *sql.DB
	path             string
	strictSignatures bool
}

// NewClient opens the database file, applies the session pragmas and returns
// the client. It does not migrate; call Migrate under the migration lock.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single shared connection keeps the pragmas below in effect for every
	// statement and lets SQLite serialize the write path itself.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db, path: cfg.Path, strictSignatures: cfg.StrictSignatures}, nil
}

// DB returns the underlying connection for direct queries.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Path returns the database file path.
func (c *Client) Path() string {
	return c.path
}

// Close flushes and closes the connection.
func (c *Client) Close() error {
	return c.db.Close()
}
