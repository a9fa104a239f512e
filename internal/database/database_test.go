package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/domain"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:x?mode=memory&cache=shared&_foreign_keys=1", sqliteDSN("file:x?mode=memory&cache=shared", "/w"))
	assert.Equal(t, ":memory:?_foreign_keys=1", sqliteDSN(":memory:", "/w"))
	assert.Equal(t, "/abs/gear.db?_foreign_keys=1", sqliteDSN("/abs/gear.db", "/w"))

	workdir := t.TempDir()
	assert.Equal(t, filepath.Join(workdir, "data", "gear.db")+"?_foreign_keys=1", sqliteDSN("gear.db", workdir))
	assert.DirExists(t, filepath.Join(workdir, "data"))
}

func TestOpenMigrateDrop(t *testing.T) {
	db, err := Open(config.DBConfig{Type: "sqlite", Name: "gear.db"}, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range domain.Tables {
		assert.True(t, db.Migrator().HasTable(table))
	}

	require.NoError(t, DropAll(db))
	for _, table := range domain.Tables {
		assert.False(t, db.Migrator().HasTable(table))
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(config.DBConfig{Type: "oracle"}, t.TempDir())
	assert.ErrorContains(t, err, "unsupported database type")
}
