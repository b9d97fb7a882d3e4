// Package migrations carries the versioned ledger schema for every SQL store
// and applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// RunPostgres applies all pending postgres migrations to the database at databaseURL.
// It opens its own short-lived database/sql connection.
func RunPostgres(databaseURL string, logger *slog.Logger) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := newMigrator("postgres", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	upErr := up(m, logger)

	// closing the migrator closes db as well
	sourceErr, dbErr := m.Close()
	if upErr != nil {
		return upErr
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}
	return nil
}

// RunSQLite applies all pending sqlite migrations to db. The migrator is not
// closed because that would close db, which the caller keeps using.
func RunSQLite(db *sql.DB, logger *slog.Logger) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite driver instance for migrations: %w", err)
	}
	m, err := newMigrator("sqlite", driver)
	if err != nil {
		return err
	}
	return up(m, logger)
}

func newMigrator(dialect string, driver database.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded %s migrations: %w", dialect, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

func up(m *migrate.Migrate, logger *slog.Logger) error {
	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		logger.Info("Database migrations applied successfully.", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}
