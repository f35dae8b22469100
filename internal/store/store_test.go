package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if _, err := NewUserStore(db).Ensure(id); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return id
}
