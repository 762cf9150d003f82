// Package db persists requirement-to-package resolutions between runs so
// repeated builds skip the candidate search for requirements already
// resolved on this machine. Purely an acceleration layer; entries are
// overwritten freely.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the resolution cache with separate read/write pools.
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New opens (and if needed creates) the resolution cache at dbPath.
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	db := &DB{write: write, read: read, path: dbPath}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes both connection pools.
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS resolutions (
    dep_key TEXT PRIMARY KEY,
    relation TEXT NOT NULL,
    resolved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the cached relation text for a dependency key, or ok=false
// when no resolution is cached.
func (db *DB) Get(ctx context.Context, depKey string) (relation string, ok bool, err error) {
	row := db.read.QueryRowContext(ctx,
		`SELECT relation FROM resolutions WHERE dep_key = ?`, depKey)
	if err := row.Scan(&relation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query resolution: %w", err)
	}
	return relation, true, nil
}

// Put records a resolution, replacing any previous entry for the key.
func (db *DB) Put(ctx context.Context, depKey, relation string) error {
	_, err := db.write.ExecContext(ctx,
		`INSERT INTO resolutions (dep_key, relation, resolved_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(dep_key) DO UPDATE SET relation = excluded.relation, resolved_at = excluded.resolved_at`,
		depKey, relation)
	if err != nil {
		return fmt.Errorf("store resolution: %w", err)
	}
	return nil
}

// Delete removes a cached resolution; missing keys are not an error.
func (db *DB) Delete(ctx context.Context, depKey string) error {
	if _, err := db.write.ExecContext(ctx,
		`DELETE FROM resolutions WHERE dep_key = ?`, depKey); err != nil {
		return fmt.Errorf("delete resolution: %w", err)
	}
	return nil
}

// Count returns the number of cached resolutions.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	row := db.read.QueryRowContext(ctx, `SELECT COUNT(*) FROM resolutions`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count resolutions: %w", err)
	}
	return n, nil
}
