package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/presence-stats/internal/adapters/secondary/postgres"
	"github.com/lorrc/presence-stats/internal/adapters/secondary/sqlite"
	"github.com/lorrc/presence-stats/internal/config"
	apperrors "github.com/lorrc/presence-stats/internal/core/errors"
	"github.com/lorrc/presence-stats/internal/core/ports"
)

// Store bundles the repositories of one configured backend.
type Store struct {
	Driver        string
	StatusRecords ports.StatusRecordRepository
	Users         ports.UserRepository
	// TxManager is nil when the backend has no snapshot reads.
	TxManager ports.TransactionManager

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close() {
	s.close()
}

// Open connects to the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Database)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStoreDriver, cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, dbCfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(dbCfg.MaxOpenConns)
	poolConfig.MinConns = int32(dbCfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = dbCfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbCfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &Store{
		Driver:        config.DriverPostgres,
		StatusRecords: postgres.NewStatusRecordRepository(pool),
		Users:         postgres.NewUserRepository(pool),
		TxManager:     postgres.NewTransactionManager(pool),
		ping:          pool.Ping,
		close:         pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare sqlite schema: %w", err)
	}

	return &Store{
		Driver:        config.DriverSQLite,
		StatusRecords: db,
		Users:         db,
		ping:          db.Ping,
		close:         func() { _ = db.Close() },
	}, nil
}
