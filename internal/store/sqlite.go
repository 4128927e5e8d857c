package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"moviely/internal/project"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLite stores projects as documents in a single table.
type SQLite struct {
	db     *sql.DB
	path   string
	assets project.AssetChecker
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, assets project.AssetChecker) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, storageError("create database directory", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageError("open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, storageError(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, storageError("migrate", err)
	}
	return &SQLite{db: db, path: path, assets: assets}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, state project.State, id string) (string, error) {
	ctx = contextOrBackground(ctx)
	id, err := ResolveID(state, id)
	if err != nil {
		return "", err
	}
	data, err := project.Marshal(state)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err = retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `
INSERT INTO projects (id, name, document, clip_count, duration_seconds, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    document = excluded.document,
    clip_count = excluded.clip_count,
    duration_seconds = excluded.duration_seconds,
    updated_at = excluded.updated_at`,
			id, state.Name, string(data), state.ClipCount(), state.TotalDuration(), now, now)
		return execErr
	})
	if err != nil {
		return "", storageError("save "+id, err)
	}
	return id, nil
}

func (s *SQLite) Load(ctx context.Context, id string) (project.State, error) {
	return s.load(ctx, id, s.assets)
}

func (s *SQLite) LoadUnchecked(ctx context.Context, id string) (project.State, error) {
	return s.load(ctx, id, project.SkipAssets)
}

func (s *SQLite) load(ctx context.Context, id string, assets project.AssetChecker) (project.State, error) {
	ctx = contextOrBackground(ctx)
	var document string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM projects WHERE id = ?", id).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return project.State{}, notFound(id)
		}
		return project.State{}, storageError("load "+id, err)
	}
	return project.Decode([]byte(document), assets)
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	ctx = contextOrBackground(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM projects ORDER BY id")
	if err != nil {
		return nil, storageError("list", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageError("list", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list", err)
	}
	return ids, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	ctx = contextOrBackground(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return false, storageError("delete "+id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageError("delete "+id, err)
	}
	return affected > 0, nil
}

func (s *SQLite) Exists(ctx context.Context, id string) (bool, error) {
	ctx = contextOrBackground(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM projects WHERE id = ?", id).Scan(&count); err != nil {
		return false, storageError("exists "+id, err)
	}
	return count > 0, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
