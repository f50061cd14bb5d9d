package test

import (
	"testing"

	"github.com/rs/zerolog"

	"todoserver/internal/adapter/database/sqlite"
)

// InitTestDB opens a migrated in-memory database that is closed when t ends.
func InitTestDB(t testing.TB) *sqlite.DB {
	t.Helper()

	db, err := sqlite.NewDB(zerolog.Nop())

	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, db *sqlite.DB, table string) int {
	t.Helper()

	var count int

	query, args, err := db.QueryBuilder.Select("COUNT(*)").From(table).ToSql()

	if err != nil {
		t.Fatalf("Failed to build count query for %s: %v", table, err)
	}

	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows of %s: %v", table, err)
	}

	return count
}
