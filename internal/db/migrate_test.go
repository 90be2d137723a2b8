package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geocoder89/eventmanager/internal/config"
)

func TestMigrateSQLiteUpDown(t *testing.T) {
	ctx := context.Background()
	bdb, err := OpenSQLite(ctx, config.SQLiteDSN(filepath.Join(t.TempDir(), "m.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	require.NoError(t, MigrateSQLite(bdb.DB, Up))
	// second run is a no-op
	require.NoError(t, MigrateSQLite(bdb.DB, Up))

	var n int
	require.NoError(t, bdb.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'events', 'registrations')`).Scan(&n))
	require.Equal(t, 3, n)

	require.NoError(t, MigrateSQLite(bdb.DB, Down))
	require.NoError(t, bdb.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'events', 'registrations')`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("UP")
	require.NoError(t, err)
	require.Equal(t, Up, d)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
}

func TestPgx5URL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", pgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	require.Equal(t, "pgx5://h/db", pgx5URL("postgresql://h/db"))
}
