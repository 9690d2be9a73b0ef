package ops

import (
	"context"
	"database/sql"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/todo"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title string // required, must be non-empty after trimming
}

// Create inserts a new todo with done=false and returns the stored record.
// Titles are validated here as well as in clients: an empty or
// whitespace-only title is rejected rather than trusted to the caller.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*todo.Todo, error) {
	if !todo.ValidTitle(input.Title) {
		return nil, errors.NewInvalidRequest("title is required and must not be blank")
	}

	created, err := db.Insert(ctx, database, input.Title)
	if err != nil {
		return nil, err
	}

	return &created, nil
}
