// Package testutil provides an isolated database for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soteriahealth/soteria/milestones"
	"github.com/soteriahealth/soteria/models"
)

var dbSeq atomic.Int64

// NewTestDB opens a fresh in-memory SQLite database with every model
// migrated and the default milestone catalog seeded. It is closed when the
// test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:soteria_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(ON)", dbSeq.Add(1))
	// one connection keeps the shared in-memory database alive and serializes transactions
	return open(t, dsn, 1)
}

// NewFileTestDB is NewTestDB backed by a WAL file in a temp dir, with conns
// open connections so transactions really run side by side.
func NewFileTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soteria.db")
	dsn := path + "?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	return open(t, dsn, conns)
}

func open(t *testing.T, dsn string, conns int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)

	require.NoError(t, db.AutoMigrate(models.All()...), "migrate test database")

	defs := milestones.Default().All()
	rows := make([]models.MilestoneDefinition, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, d.Model())
	}
	require.NoError(t, db.Create(&rows).Error, "seed milestone catalog")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
