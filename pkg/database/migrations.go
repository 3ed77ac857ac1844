package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// MigrationError reports a fatal DDL failure during migration.
type MigrationError struct {
	Table string
	Err   error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration failed for table %s: %v", e.Table, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// SignatureMismatchError reports a stored table signature that differs from
// the computed one under strict mode.
type SignatureMismatchError struct {
	Table    string
	Stored   string
	Expected string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("signature mismatch for table %s: stored %.12s, expected %.12s",
		e.Table, e.Stored, e.Expected)
}

// IsSignatureMismatch reports whether err is a SignatureMismatchError.
func IsSignatureMismatch(err error) bool {
	var sm *SignatureMismatchError
	return errors.As(err, &sm)
}

// tableSignature hashes "{table_name}:{canonical_json({schema, indexes})}".
// json.Marshal of a map emits keys in sorted order, which gives us the
// canonical form.
func tableSignature(ts tableSchema) string {
	canonical, _ := json.Marshal(map[string]any{
		"schema":  ts.DDL,
		"indexes": ts.Indexes,
	})
	sum := sha256.Sum256([]byte(ts.Name + ":" + string(canonical)))
	return hex.EncodeToString(sum[:])
}

// Migrate brings the schema to TargetSchemaVersion. It is idempotent: the
// caller may run it on every process start. The caller must hold the
// migration lock for the whole call.
//
//  1. Ensure the admin tables exist.
//  2. If the stored version is current and all signatures match, return.
//  3. For each table whose stored signature differs, issue the idempotent
//     DDL and upsert the signature row.
//  4. Record the target version.
func (c *Client) Migrate(ctx context.Context) error {
	if err := c.ensureAdminTables(ctx); err != nil {
		return err
	}

	stored, err := c.storedSignatures(ctx)
	if err != nil {
		return err
	}
	version, err := c.storedVersion(ctx)
	if err != nil {
		return err
	}

	upToDate := version >= TargetSchemaVersion
	applied := 0
	for _, ts := range expectedSchemas {
		expected := tableSignature(ts)
		got, exists := stored[ts.Name]
		if exists && got == expected {
			continue
		}
		if exists && got != expected {
			err := &SignatureMismatchError{Table: ts.Name, Stored: got, Expected: expected}
			if c.strictSignatures {
				return err
			}
			slog.Warn("Table signature mismatch, re-issuing idempotent DDL",
				"table", ts.Name, "error", err)
		}
		if err := c.applyTable(ctx, ts, expected); err != nil {
			return err
		}
		applied++
	}

	if upToDate && applied == 0 {
		return nil
	}

	now := time.Now().UTC()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO schema_versions (version, applied_at, description)
		 VALUES (?, ?, ?)
		 ON CONFLICT(version) DO UPDATE SET applied_at = excluded.applied_at`,
		TargetSchemaVersion, now, fmt.Sprintf("core schema, %d tables", len(expectedSchemas)))
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	slog.Info("Schema migration complete",
		"version", TargetSchemaVersion, "tables_applied", applied)
	return nil
}

func (c *Client) ensureAdminTables(ctx context.Context) error {
	admin := []string{
		`CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS table_signatures (
			table_name TEXT PRIMARY KEY,
			signature TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, ddl := range admin {
		if _, err := c.db.ExecContext(ctx, ddl); err != nil {
			return &MigrationError{Table: "admin", Err: err}
		}
	}
	return nil
}

func (c *Client) applyTable(ctx context.Context, ts tableSchema, signature string) error {
	if _, err := c.db.ExecContext(ctx, ts.DDL); err != nil {
		return &MigrationError{Table: ts.Name, Err: err}
	}
	for _, idx := range ts.Indexes {
		if _, err := c.db.ExecContext(ctx, idx); err != nil {
			return &MigrationError{Table: ts.Name, Err: err}
		}
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO table_signatures (table_name, signature, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(table_name) DO UPDATE SET
			signature = excluded.signature,
			created_at = excluded.created_at`,
		ts.Name, signature, time.Now().UTC())
	if err != nil {
		return &MigrationError{Table: ts.Name, Err: err}
	}
	return nil
}

func (c *Client) storedSignatures(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT table_name, signature FROM table_signatures`)
	if err != nil {
		return nil, fmt.Errorf("failed to read table signatures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, sig string
		if err := rows.Scan(&name, &sig); err != nil {
			return nil, fmt.Errorf("failed to scan table signature: %w", err)
		}
		out[name] = sig
	}
	return out, rows.Err()
}

func (c *Client) storedVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := c.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_versions`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
