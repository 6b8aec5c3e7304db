package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies any pending migrations to the database at databaseURL.
// It opens its own short-lived connection so the pgx pool is never shared
// with the migrator.
func Migrate(databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping for migrations: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	return applyMigrations(m)
}

// migrator is the part of *migrate.Migrate used by applyMigrations.
type migrator interface {
	Up() error
	Close() (source error, database error)
}

// applyMigrations runs every pending up migration and releases the
// migration source and database driver whatever the outcome.
func applyMigrations(m migrator) (err error) {
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
				err = fmt.Errorf("close migrator: %w", closeErr)
			}
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
