package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/todo"
)

// Insert stores a new todo with done=false and returns it with the id the
// store assigned.
func Insert(ctx context.Context, database *sql.DB, title string) (todo.Todo, error) {
	result, err := database.ExecContext(ctx,
		"INSERT INTO todos (title, done) VALUES (?, 0)", title)
	if err != nil {
		return todo.Todo{}, storeErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return todo.Todo{}, errors.NewInternal(err)
	}

	return todo.Todo{ID: id, Title: title, Done: false}, nil
}

// List returns all todos ordered by id descending (most recently created
// first). Returns an empty slice rather than nil when the table is empty.
func List(ctx context.Context, database *sql.DB) ([]todo.Todo, error) {
	rows, err := database.QueryContext(ctx,
		"SELECT id, title, done FROM todos ORDER BY id DESC")
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		var t todo.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Done); err != nil {
			return nil, errors.NewInternal(err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	return todos, nil
}

// GetByID retrieves a todo by id.
func GetByID(ctx context.Context, database *sql.DB, id int64) (todo.Todo, error) {
	var t todo.Todo
	err := database.QueryRowContext(ctx,
		"SELECT id, title, done FROM todos WHERE id = ?", id).
		Scan(&t.ID, &t.Title, &t.Done)
	if err == sql.ErrNoRows {
		return todo.Todo{}, errors.NewNotFound(id)
	}
	if err != nil {
		return todo.Todo{}, storeErr(err)
	}

	return t, nil
}

// UpdateFields applies a partial update in a single statement. COALESCE
// keeps any column whose patch field is nil, so two writers patching
// different fields cannot revert each other the way a read-then-write
// merge could.
func UpdateFields(ctx context.Context, database *sql.DB, id int64, p todo.Patch) error {
	var title sql.NullString
	if p.Title != nil {
		title = sql.NullString{String: *p.Title, Valid: true}
	}
	var done sql.NullBool
	if p.Done != nil {
		done = sql.NullBool{Bool: *p.Done, Valid: true}
	}

	result, err := database.ExecContext(ctx,
		"UPDATE todos SET title = COALESCE(?, title), done = COALESCE(?, done) WHERE id = ?",
		title, done, id)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// UpdateByID writes a todo's mutable fields. The caller merges the patch
// first (todo.Apply), so both fields are always written here.
func UpdateByID(ctx context.Context, database *sql.DB, t todo.Todo) error {
	result, err := database.ExecContext(ctx,
		"UPDATE todos SET title = ?, done = ? WHERE id = ?", t.Title, t.Done, t.ID)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(t.ID)
	}

	return nil
}

// DeleteByID removes a todo permanently. No tombstone is kept; the id is
// never handed out again.
func DeleteByID(ctx context.Context, database *sql.DB, id int64) error {
	result, err := database.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// Count returns the number of rows in the todos table.
func Count(ctx context.Context, database *sql.DB) (int, error) {
	var n int
	if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&n); err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

// storeErr maps a raw store failure to a coded error. A context deadline hit
// while queueing for a pooled connection surfaces as RESOURCE_EXHAUSTED.
func storeErr(err error) *errors.TickError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewResourceExhausted()
	}
	return errors.NewInternal(err)
}
