package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrDirtySchema means a previous migration failed halfway.
var ErrDirtySchema = errors.New("schema is dirty, manual intervention required")

// WithMigrator opens a migrate instance over the SQL files in dir and hands it to fn.
func WithMigrator(databaseURL, dir string, fn func(m *migrate.Migrate) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid migrations path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return fn(m)
}

// Migrate applies every pending up migration. An already current schema is not an error.
func Migrate(databaseURL, dir string, logger *slog.Logger) error {
	return WithMigrator(databaseURL, dir, func(m *migrate.Migrate) error {
		err := m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		applied := err == nil

		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations found", "dir", dir)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
		if dirty {
			return fmt.Errorf("version %d: %w", version, ErrDirtySchema)
		}

		if applied {
			logger.Info("migrations applied", "version", version)
		} else {
			logger.Debug("schema up to date", "version", version)
		}
		return nil
	})
}

// Rollback reverts the last n migrations.
func Rollback(databaseURL, dir string, n int) error {
	return WithMigrator(databaseURL, dir, func(m *migrate.Migrate) error {
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return nil
	})
}

// Version reports the applied schema version. ok is false when nothing has been applied.
func Version(databaseURL, dir string) (version uint, dirty, ok bool, err error) {
	err = WithMigrator(databaseURL, dir, func(m *migrate.Migrate) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to get migration version: %w", verr)
		}
		version, dirty, ok = v, d, true
		return nil
	})
	return version, dirty, ok, err
}
