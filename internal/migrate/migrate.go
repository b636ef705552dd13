// Package migrate applies the collector's embedded SQL schema against
// Postgres using golang-migrate/migrate/v4, so environments without a
// separate schema-management tool can still stand up the measurements
// table.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/gnmradar/collector/schema"
)

const migrationsTable = "schema_migrations"

// Up opens dsn with database/sql (lib/pq, since golang-migrate's postgres
// driver wraps *sql.DB rather than pgxpool) and applies every embedded
// migration that has not yet run.
func Up(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sourceDriver, err := iofs.New(schema.Migrations, ".")
	if err != nil {
		return fmt.Errorf("init migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
