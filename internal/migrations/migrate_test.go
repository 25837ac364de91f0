package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/exportquote/internal/db"
)

func TestUpCreatesSchemaAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(ctx, database))
	require.NoError(t, Up(ctx, database))

	v, err := Version(database)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	for _, table := range []string{"users", "settings", "products", "container_types", "ports", "quotes", "freight_lanes"} {
		var n int
		err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		require.Equalf(t, 1, n, "table %s", table)
	}
}
