package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everyday-christian-tagger/pkg/schema/config"
	"github.com/everyday-christian-tagger/pkg/schema/sqlite"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bible.db")

	conn, err := Open(ctx, &config.Config{Driver: DriverSQLite, DBPath: path})
	require.NoError(t, err)
	defer conn.Close()

	assert.False(t, IsPostgres(conn))

	var tables []string
	require.NoError(t, conn.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('verses', 'tagging_runs') ORDER BY name`))
	assert.Equal(t, []string{"tagging_runs", "verses"}, tables)

	// migrating twice is a no-op
	require.NoError(t, Migrate(ctx, conn))
}

func TestMigrate_AddsCleanText(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sqlx.ConnectContext(ctx, sqlite.DriverName(), path)
	require.NoError(t, err)
	_, err = legacy.ExecContext(ctx, `CREATE TABLE verses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		book TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		verse_number INTEGER NOT NULL,
		text TEXT NOT NULL,
		translation TEXT DEFAULT 'WEB',
		reference TEXT NOT NULL,
		themes TEXT
	)`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	conn, err := Open(ctx, &config.Config{Driver: DriverSQLite, DBPath: path})
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM pragma_table_info('verses') WHERE name = 'clean_text'`))
	assert.Equal(t, 1, count)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, &config.Config{Driver: "oracle"})
	assert.Error(t, err)

	_, err = Open(ctx, &config.Config{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "POSTGRES_URI")

	_, err = Open(ctx, &config.Config{Driver: DriverSQLite})
	assert.ErrorContains(t, err, "DB_PATH")
}

func TestInit_UsesEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "env.db"))

	require.NoError(t, Init(context.Background()))
	t.Cleanup(func() { Close() })

	assert.True(t, Enabled())
	require.NotNil(t, Get())
	require.NoError(t, Get().PingContext(context.Background()))
}
