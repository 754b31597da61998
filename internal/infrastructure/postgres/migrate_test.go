package postgres

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationProvider_VersionesOrdenadas(t *testing.T) {
	// sql.Open no conecta; el provider solo recorre los archivos embebidos.
	db, err := sql.Open("pgx", "postgres://localhost:1/ledger")
	require.NoError(t, err)
	defer db.Close()

	provider, err := newMigrationProvider(db)
	require.NoError(t, err)

	sources := provider.ListSources()
	require.Len(t, sources, 3)
	for i, s := range sources {
		assert.Equal(t, int64(i+1), s.Version)
	}
	assert.Contains(t, sources[0].Path, "001_catalog.sql")
}

func TestMigrations_AnotacionesGoose(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	for _, e := range entries {
		body, err := migrationFiles.ReadFile("migrations/" + e.Name())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "-- +goose Up\n"), e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
	}
}

func TestMigrations_ProtegenInvariantes(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/002_stock_lots.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "CHECK (remaining_quantity >= 0)")

	body, err = migrationFiles.ReadFile("migrations/003_requests.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "WHERE status = 'PENDING'"), "índices únicos parciales de solicitudes pendientes")
}
