package ops

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/todo"
)

func TestUpdate_PartialPreservesOmittedFields(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	id := seedTodo(t, database, "A")

	// Toggle done only; title must survive
	updated, err := Update(ctx, database, UpdateInput{
		ID:    id,
		Patch: todo.Patch{Done: boolPtr(true)},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "A" {
		t.Errorf("Title = %q, want %q after done-only patch", updated.Title, "A")
	}
	if !updated.Done {
		t.Error("Done = false, want true")
	}

	// Rename only; done must never revert
	updated, err = Update(ctx, database, UpdateInput{
		ID:    id,
		Patch: todo.Patch{Title: stringPtr("B")},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "B" {
		t.Errorf("Title = %q, want %q", updated.Title, "B")
	}
	if !updated.Done {
		t.Error("Done reverted to false after title-only patch")
	}
}

func TestUpdate_ProvidedFalseOverwrites(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	id := seedTodo(t, database, "task")
	if _, err := Update(ctx, database, UpdateInput{ID: id, Patch: todo.Patch{Done: boolPtr(true)}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// done:false is a provided value, not an omission
	updated, err := Update(ctx, database, UpdateInput{
		ID:    id,
		Patch: todo.Patch{Done: boolPtr(false)},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Done {
		t.Error("Done = true, want false (provided false treated as no change)")
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	id := seedTodo(t, database, "unchanged")

	updated, err := Update(ctx, database, UpdateInput{ID: id})
	if err != nil {
		t.Fatalf("Update with empty patch failed: %v", err)
	}
	if updated.Title != "unchanged" || updated.Done {
		t.Errorf("record changed by empty patch: %+v", updated)
	}
}

func TestUpdate_RejectsBlankTitle(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	id := seedTodo(t, database, "keep me")

	_, err := Update(ctx, database, UpdateInput{
		ID:    id,
		Patch: todo.Patch{Title: stringPtr("   ")},
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}

	// Stored title untouched
	updated, err := Update(ctx, database, UpdateInput{ID: id})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "keep me" {
		t.Errorf("Title = %q, want %q", updated.Title, "keep me")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	database := setupTestDB(t)

	_, err := Update(context.Background(), database, UpdateInput{
		ID:    999,
		Patch: todo.Patch{Done: boolPtr(true)},
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestUpdate_ConcurrentFieldWritesBothLand(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	id := seedTodo(t, database, "original")

	// A done-only writer racing a title-only writer must not revert the
	// other's field, whichever order the store serializes them in.
	for i := 0; i < 10; i++ {
		title := fmt.Sprintf("revision %d", i)
		done := i%2 == 0

		var wg sync.WaitGroup
		wg.Add(2)
		errs := make(chan error, 2)
		go func() {
			defer wg.Done()
			_, err := Update(ctx, database, UpdateInput{ID: id, Patch: todo.Patch{Title: &title}})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := Update(ctx, database, UpdateInput{ID: id, Patch: todo.Patch{Done: &done}})
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent update failed: %v", err)
			}
		}

		got, err := db.GetByID(ctx, database, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Title != title {
			t.Errorf("round %d: Title = %q, want %q (reverted by done-only writer)", i, got.Title, title)
		}
		if got.Done != done {
			t.Errorf("round %d: Done = %v, want %v (reverted by title-only writer)", i, got.Done, done)
		}
	}
}
