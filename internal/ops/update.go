package ops

import (
	"context"
	"database/sql"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/todo"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID    int64
	Patch todo.Patch // nil fields keep their stored value
}

// Update applies a field-preserving merge: fields omitted from the patch
// retain their stored value, fields provided overwrite it. A provided
// done=false overwrites to false. A patch with no fields is a valid no-op
// that returns the current record.
//
// The merge happens in a single statement at the store, so a writer that
// only provides done can never revert another writer's title (and vice
// versa).
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*todo.Todo, error) {
	if input.Patch.Title != nil && !todo.ValidTitle(*input.Patch.Title) {
		return nil, errors.NewInvalidRequest("title must not be blank")
	}

	if !input.Patch.IsZero() {
		if err := db.UpdateFields(ctx, database, input.ID, input.Patch); err != nil {
			return nil, err
		}
	}

	current, err := db.GetByID(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	return &current, nil
}
