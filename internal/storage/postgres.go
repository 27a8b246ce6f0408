package storage

import (
	"context"
	"errors"

	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgInsufficientPrivilege = "42501"
	pgInvalidPassword       = "28P01"
	pgDiskFull              = "53100"
	pgOutOfMemory           = "53200"
	pgProgramLimitExceeded  = "54000"
	pgInvalidJSONText       = "22P02"
)

// PostgresStore keeps values in the kv_store table as JSONB.
// The schema comes from Migrate(db, "postgres").
type PostgresStore struct {
	db            *pgxpool.Pool
	namespace     string
	maxValueBytes int
}

func NewPostgresStore(db *pgxpool.Pool, namespace string) *PostgresStore {
	return &PostgresStore{
		db:            db,
		namespace:     namespace,
		maxValueBytes: DefaultMaxValueBytes,
	}
}

func (s *PostgresStore) Get(ctx context.Context, key Key, dest any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var data []byte
	if err := s.db.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`,
		s.namespace, string(key),
	).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return postgresError(key, err)
	}
	return decode(key, data, dest)
}

func (s *PostgresStore) Set(ctx context.Context, key Key, value any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	data, err := encode(key, value, s.maxValueBytes)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO kv_store (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, s.namespace, string(key), string(data)); err != nil {
		return postgresError(key, err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key Key) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.Exec(ctx,
		`DELETE FROM kv_store WHERE namespace = $1 AND key = $2`,
		s.namespace, string(key),
	); err != nil {
		return postgresError(key, err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.Exec(ctx, `DELETE FROM kv_store WHERE namespace = $1`, s.namespace); err != nil {
		return postgresError("", err)
	}
	return nil
}

func postgresError(key Key, err error) error {
	if code, ok := pkg.PgErrorCode(err); ok {
		switch code {
		case pgDiskFull, pgOutOfMemory, pgProgramLimitExceeded:
			return newError(ErrorTypeQuotaExceeded, key, err)
		case pgInsufficientPrivilege, pgInvalidPassword:
			return newError(ErrorTypeAccessDenied, key, err)
		case pgInvalidJSONText:
			return newError(ErrorTypeParse, key, err)
		}
	}
	return newError(ErrorTypeUnknown, key, err)
}
