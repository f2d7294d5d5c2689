package db

import (
	"database/sql"
	"errors"
	"fmt"

	"bazaar-be/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

var ErrUnknownDirection = errors.New("migration direction must be up or down")

func newMigrator(conn *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migrate driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

// Migrate applies every pending migration (up) or rolls back the latest one (down).
// Running up on a current schema is not an error.
func Migrate(conn *sql.DB, direction string) error {
	if direction != DirectionUp && direction != DirectionDown {
		return ErrUnknownDirection
	}

	m, err := newMigrator(conn)
	if err != nil {
		return err
	}

	if direction == DirectionUp {
		err = m.Up()
	} else {
		err = m.Steps(-1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
