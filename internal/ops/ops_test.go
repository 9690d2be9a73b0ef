package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/penwick/tick/internal/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

// seedTodo creates a todo and returns its id.
func seedTodo(t *testing.T, database *sql.DB, title string) int64 {
	t.Helper()
	created, err := Create(context.Background(), database, CreateInput{Title: title})
	if err != nil {
		t.Fatalf("seed todo %q: %v", title, err)
	}
	return created.ID
}
