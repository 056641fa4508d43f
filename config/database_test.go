package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soteriahealth/soteria/models"
)

func TestOpenDatabaseSQLiteAndMigrate(t *testing.T) {
	c := AppConfig{DBDriver: "sqlite", DatabaseURI: filepath.Join(t.TempDir(), "soteria.db"), LogLevel: "silent"}
	db, err := OpenDatabase(c)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))
	// additive, so a second run is a no-op
	require.NoError(t, Migrate(db))
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestDialectorForUnknownDriver(t *testing.T) {
	_, err := dialectorFor(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}
