package ops

import (
	"context"
	"database/sql"

	"github.com/penwick/tick/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID int64
}

// Delete removes a todo permanently. Hard delete, no tombstone.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) error {
	return db.DeleteByID(ctx, database, input.ID)
}
