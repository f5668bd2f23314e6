package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending migrations from dir against the database at dsn.
// A database that is already up to date is not an error.
func Migrate(dsn, dir string) error {
	if dir == "" {
		return errors.New("platform/db: migrations dir is empty")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", dir), dsn)
	if err != nil {
		return fmt.Errorf("platform/db: migrate init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: migrate up: %w", err)
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return fmt.Errorf("platform/db: migrate close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("platform/db: migrate close db: %w", dbErr)
	}

	return nil
}
