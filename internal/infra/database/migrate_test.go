package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	raw, err := migrationsFS.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-- +goose Up")
	assert.Contains(t, string(raw), "-- +goose Down")
	assert.Contains(t, string(raw), "daily_general_announcements")
}

func TestMigrate(t *testing.T) {
	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })

	var gotCommand, gotDir string
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, _ ...string) error {
		gotCommand, gotDir = command, dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), nil, "up"))
	assert.Equal(t, "up", gotCommand)
	assert.Equal(t, "migrations", gotDir)

	gooseRunFunc = func(context.Context, string, *sql.DB, string, ...string) error {
		return errors.New("no next version")
	}
	err := Migrate(context.Background(), nil, "up")
	assert.ErrorContains(t, err, "migration up failed")
}
