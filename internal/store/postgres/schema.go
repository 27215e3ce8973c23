package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// createdBy is recorded in the platform row written at creation.
const createdBy = "platformSetup"

// TablesExist reports whether the platform tables have been created.
func (s *PostgresStore) TablesExist(ctx context.Context) (bool, error) {
	return queryTablesExist(ctx, s.db)
}

// CreateAndInitializeIfNecessary applies the schema migrations and writes the
// platform row. Both steps are no-ops on an already created platform.
func (s *PostgresStore) CreateAndInitializeIfNecessary(ctx context.Context, version string) error {
	if err := runMigrations(s.db, func(m *migrate.Migrate) error { return m.Up() }); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := queryInsertPlatform(ctx, s.db, version, time.Now().UnixMilli(), createdBy); err != nil {
		return fmt.Errorf("insert platform row: %w", err)
	}
	return nil
}

// DropTables runs every down migration.
func (s *PostgresStore) DropTables(ctx context.Context) error {
	if err := runMigrations(s.db, func(m *migrate.Migrate) error { return m.Down() }); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func runMigrations(db *sql.DB, apply func(m *migrate.Migrate) error) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
