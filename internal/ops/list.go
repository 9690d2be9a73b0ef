package ops

import (
	"context"
	"database/sql"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/todo"
)

// List retrieves every todo ordered by id descending (most recently
// created first). No filtering, no pagination.
func List(ctx context.Context, database *sql.DB) ([]todo.Todo, error) {
	return db.List(ctx, database)
}
