package db

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/damptrack/internal/monitoring"
)

// setupTestDB opens a fresh, migrated database in a temp dir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	monitoring.SetLogger(nil)

	db, err := NewDB(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}
