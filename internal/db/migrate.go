package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(raw)); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("unknown migration direction %q", raw)
	}
}

// MigratePostgres applies the embedded postgres migrations to dbURL.
func MigratePostgres(dbURL string, dir Direction) error {
	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("load postgres migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(dbURL))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return run(m, dir)
}

// MigrateSQLite applies the embedded sqlite migrations through an open handle.
// The handle stays owned by the caller.
func MigrateSQLite(sqldb *sql.DB, dir Direction) error {
	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("load sqlite migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(sqldb, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would close sqldb as well.

	return run(m, dir)
}

func run(m *migrate.Migrate, dir Direction) error {
	var err error
	switch dir {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", dir, err)
	}
	return nil
}

// golang-migrate registers the pgx v5 driver under the pgx5 scheme.
func pgx5URL(dbURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}
