package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

const maxTransactionRetries = 3

// txn wraps a pgx.Tx for the duration of a single EPP command.
type txn struct {
	s  *Store
	tx pgx.Tx
}

// WithTransaction runs fn inside a PostgreSQL transaction, retrying on
// deadlock/serialization failures. Repeatable-read isolation guarantees that
// a handler's check-then-write sequence (e.g. check-not-exists then insert)
// cannot lose a race against a concurrent command on the same objects.
func (s *Store) WithTransaction(ctx context.Context, fn func(store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var lastErr error
	var current pgx.Tx
	defer func() {
		if p := recover(); p != nil {
			if current != nil {
				_ = current.Rollback(context.Background())
			}
			panic(p)
		}
	}()
	for attempt := 0; attempt < maxTransactionRetries; attempt++ {
		acquireCtx, cancel := context.WithTimeout(ctx, poolConnectionAcquireTimeout)
		pgxTx, err := s.pool.BeginTx(acquireCtx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		cancel()
		if err != nil {
			return mapPgError(err, "WithTransaction", "")
		}
		current = pgxTx

		t := &txn{s: s, tx: pgxTx}
		if err := fn(t); err != nil {
			rollbackCtx, rollbackCancel := context.WithTimeout(ctx, poolConnectionAcquireTimeout)
			_ = pgxTx.Rollback(rollbackCtx)
			rollbackCancel()

			if isRetryableError(err) {
				lastErr = err
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return err
		}

		commitCtx, commitCancel := context.WithTimeout(ctx, poolConnectionAcquireTimeout)
		err = pgxTx.Commit(commitCtx)
		commitCancel()
		if err != nil {
			if isRetryableError(err) {
				lastErr = err
				time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
				continue
			}
			return mapPgError(err, "WithTransaction", "")
		}
		return nil
	}

	return mapPgError(lastErr, "WithTransaction", "")
}
