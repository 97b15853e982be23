package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// mapPgError translates a raw pgx/pgconn error into the store's domain error
// taxonomy so handlers never need to inspect PostgreSQL-specific types.
func mapPgError(err error, op, detail string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.NewError(store.ErrNotFound, op+": not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return store.NewError(store.ErrExists, op+": already exists")
		case "23503": // foreign_key_violation
			return store.NewErrorf(store.ErrInUse, detail, "%s: referenced by another object", op)
		}
	}

	return store.NewErrorf(store.ErrInternal, "", "%s: %w", op, err)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40P01", "40001": // deadlock_detected, serialization_failure
			return true
		}
	}
	return false
}
