package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrator wraps bun's migrate.Migrator, adapted from
// internal/infrastructure/storage/migrate.go with the SDK-only
// MigratorWithAccess wrapper dropped — cmd/migrate is this repo's only
// caller.
type Migrator struct {
	migrator *migrate.Migrator
}

// NewMigrator discovers *.sql migrations in migrationsFS and binds them to db.
func NewMigrator(db *bun.DB, migrationsFS fs.FS) (*Migrator, error) {
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}
	return &Migrator{migrator: migrate.NewMigrator(db, migrations)}, nil
}

// Init creates bun's migration tracking tables.
func (m *Migrator) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

// Up runs every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		slog.Info("no new migrations to run")
		return nil
	}
	slog.Info("migrations applied", slog.String("migrations", fmt.Sprintf("%v", group.Migrations.Applied())))
	return nil
}

// Down rolls back the most recently applied migration group.
func (m *Migrator) Down(ctx context.Context) error {
	group, err := m.migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	if group.IsZero() {
		slog.Info("no migrations to rollback")
		return nil
	}
	slog.Info("migration rolled back", slog.String("migrations", fmt.Sprintf("%v", group.Migrations.Unapplied())))
	return nil
}

// Status reports each discovered migration's applied/pending state.
func (m *Migrator) Status(ctx context.Context) error {
	ms, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, migration := range ms {
		status := "pending"
		if migration.GroupID > 0 {
			status = "applied"
		}
		slog.Info("migration", slog.String("name", migration.Name), slog.String("status", status))
	}
	return nil
}

// Reset rolls back every applied migration group, in order.
func (m *Migrator) Reset(ctx context.Context) error {
	for {
		group, err := m.migrator.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		if group.IsZero() {
			return nil
		}
		slog.Info("rolled back migration group", slog.Int64("id", group.ID))
	}
}
