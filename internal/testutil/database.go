// Package testutil builds throwaway databases and fixture graphs for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/config"
	"github.com/SAP-F-2025/campus-records-service/pkg"
)

// NewTestDB opens a migrated sqlite file database with foreign keys enforced.
// The file lives in t.TempDir and disappears with the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "records.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := pkg.OpenDatabase(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    dsn,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
