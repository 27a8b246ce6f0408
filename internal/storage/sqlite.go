package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore keeps values in a local SQLite file, one row per namespaced key.
type SQLiteStore struct {
	db            *sql.DB
	namespace     string
	maxValueBytes int
}

func NewSQLiteStore(dbPath, namespace string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps in-memory databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}
	if err := Migrate(db, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:            db,
		namespace:     namespace,
		maxValueBytes: DefaultMaxValueBytes,
	}, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key Key, dest any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.get")
	defer func() {
		if !errors.Is(err, ErrNotFound) {
			tracing.EndSpanWithErrCheck(span, err)
		} else {
			span.End()
		}
	}()

	var value string
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE namespace = ? AND key = ?`,
		s.namespace, string(key),
	)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return sqliteError(key, err)
	}

	return decode(key, []byte(value), dest)
}

func (s *SQLiteStore) Set(ctx context.Context, key Key, value any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	data, err := encode(key, value, s.maxValueBytes)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.namespace, string(key), string(data), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return sqliteError(key, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key Key) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_store WHERE namespace = ? AND key = ?`,
		s.namespace, string(key),
	); err != nil {
		return sqliteError(key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.sqlite.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE namespace = ?`, s.namespace); err != nil {
		return sqliteError("", err)
	}
	return nil
}

func sqliteError(key Key, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return newError(ErrorTypeQuotaExceeded, key, err)
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_AUTH:
			return newError(ErrorTypeAccessDenied, key, err)
		}
	}
	return newError(ErrorTypeUnknown, key, err)
}
