// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory SQLite database private to the test.
// The database is closed when the test finishes.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Type: config.DatabaseTypeSQLite,
		SQLite: config.SQLiteConfig{
			Path: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
	}
	d, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(d) })
	return d
}

// Count returns the number of rows of the given model.
func Count(t *testing.T, d *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	if err := d.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
