// Package postgres implements the registry store.Store interface on top of
// PostgreSQL via pgx, with one connection pool per store and one
// transaction per command.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// poolConnectionAcquireTimeout bounds how long a command waits for a pooled
// connection before giving up; it prevents one exhausted pool from stalling
// every in-flight EPP session indefinitely.
const poolConnectionAcquireTimeout = 5 * time.Second

// Store is the PostgreSQL-backed implementation of store.Store.
type Store struct {
	pool   *pgxpool.Pool
	config *Config
	logger *slog.Logger
}

// New opens a connection pool, optionally runs migrations, and returns a
// ready-to-use Store.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	cfg.ApplyDefaults()

	log := logger.With("component", "postgres_store")

	pool, err := createConnectionPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if cfg.AutoMigrate {
		log.Info("auto_migrate enabled, applying migrations")
		if err := runMigrations(ctx, cfg.ConnectionString(), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info("auto_migrate disabled, run 'eppd migrate' manually")
	}

	return &Store{pool: pool, config: cfg, logger: log}, nil
}

func (s *Store) Close() error {
	closeConnectionPool(s.pool, s.logger)
	return nil
}

func (s *Store) Registrar(ctx context.Context, clID string) (*store.Registrar, error) {
	row := s.pool.QueryRow(ctx, `SELECT clid, pw, name, email FROM registrars WHERE clid = $1`, clID)
	var r store.Registrar
	if err := row.Scan(&r.ClID, &r.PW, &r.Name, &r.Email); err != nil {
		return nil, mapPgError(err, "Registrar", "")
	}
	return &r, nil
}
