package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
)

const versionTable = "schema_version"

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationStatus is the applied schema version against the newest
// embedded one.
type MigrationStatus struct {
	Current int32
	Latest  int32
}

func (s MigrationStatus) Pending() int32 {
	return s.Latest - s.Current
}

// migrationFiles lists the embedded migration files in apply order.
func migrationFiles() ([]string, error) {
	return fs.Glob(migrations, "migrations/*.sql")
}

// withMigrator opens a dedicated connection, loads the embedded migrations
// and hands the migrator to fn.
func withMigrator(ctx context.Context, cfg *config.Config, fn func(m *tern.Migrator) error) error {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	return fn(m)
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	return MigrateTo(ctx, logger, cfg, -1)
}

// MigrateTo moves the schema to target, running down sections when target
// is below the current version. A negative target means the latest version.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, target int32) error {
	return withMigrator(ctx, cfg, func(m *tern.Migrator) error {
		latest := int32(len(m.Migrations))
		if target < 0 {
			target = latest
		}
		if target > latest {
			return fmt.Errorf("target version %d is above the latest migration %d", target, latest)
		}

		from, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}

		if from == target {
			logger.Info().Msgf("database schema up to date, version %d", from)
			return nil
		}

		if err := m.MigrateTo(ctx, target); err != nil {
			return err
		}

		logger.Info().Msgf("migrated database schema, from %d to %d", from, target)
		return nil
	})
}

// Status reports the applied and latest schema versions without changing
// anything.
func Status(ctx context.Context, cfg *config.Config) (MigrationStatus, error) {
	var status MigrationStatus

	err := withMigrator(ctx, cfg, func(m *tern.Migrator) error {
		current, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}
		status = MigrationStatus{Current: current, Latest: int32(len(m.Migrations))}
		return nil
	})

	return status, err
}
