package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "valuations.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "valuations.db")
			},
		},
		{
			name: "reopens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "valuations.db")
				d, err := Open(path)
				require.NoError(t, err)
				require.NoError(t, d.Close())
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, d.Close()) })

			_, err = os.Stat(path)
			assert.NoError(t, err, "database file was not created")

			version, err := SchemaVersion(d)
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
		})
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	require.NoError(t, d.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestValuationsTable(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Exec(`INSERT INTO valuations
		(address, sqft, lot_size, provider, comp_count, ranked, arv, result_json, created_at)
		VALUES ('1 Main St', 1000, 5000, 'propwire', 3, 1, NULL, '{}', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var arv sql.NullInt64
	require.NoError(t, d.QueryRow(`SELECT arv FROM valuations WHERE address = '1 Main St'`).Scan(&arv))
	assert.False(t, arv.Valid)
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, migrate(d))
	require.NoError(t, migrate(d))

	var count int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, len(migrations), count)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}
