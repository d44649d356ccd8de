package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoMigrations is returned by Migrate when given no source.
var ErrNoMigrations = errors.New("no migration source")

// Migrate applies all pending up migrations found at the root of migrations.
// It opens a dedicated connection because the migrate driver closes the
// handle it is given.
func Migrate(cfg *Config, migrations fs.FS, logger *slog.Logger) error {
	if migrations == nil {
		return ErrNoMigrations
	}

	m, err := NewMigrator(cfg, migrations)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}

// NewMigrator builds a golang-migrate instance over a dedicated connection.
// The caller owns the returned migrator and must Close it.
func NewMigrator(cfg *Config, migrations fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
