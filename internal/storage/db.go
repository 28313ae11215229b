package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	storagemodels "github.com/openobserve/swisspipe/internal/storage/models"
)

// Config holds database connection configuration.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Debug           bool
}

// NewDB opens a Bun/Postgres connection and verifies it with a ping.
func NewDB(cfg *Config) (*bun.DB, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithTimeout(30*time.Second),
		pgdriver.WithDialTimeout(10*time.Second),
		pgdriver.WithReadTimeout(10*time.Second),
		pgdriver.WithWriteTimeout(10*time.Second),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	registerModels(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

func registerModels(db *bun.DB) {
	db.RegisterModel(
		(*storagemodels.WorkflowRow)(nil),
		(*storagemodels.WorkflowVersionRow)(nil),
		(*storagemodels.ExecutionRow)(nil),
		(*storagemodels.ExecutionStepRow)(nil),
		(*storagemodels.VariableRow)(nil),
		(*storagemodels.EventRow)(nil),
	)
}

// Close closes the underlying database connection.
func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// Ping verifies the connection is alive.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}

// Stats returns connection pool statistics for health/metrics endpoints.
func Stats(db *bun.DB) sql.DBStats {
	return db.DB.Stats()
}

// WithTransaction runs fn inside a read-committed transaction.
func WithTransaction(ctx context.Context, db *bun.DB, fn func(tx bun.Tx) error) error {
	return db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		return fn(tx)
	})
}
