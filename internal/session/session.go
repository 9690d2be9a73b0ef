// Package session holds the client-side state machine for a todo list:
// the transient copy of the list, the load/error state, and the single
// active edit. Every mutation is followed by a full reload; the displayed
// list is never ahead of the server.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/penwick/tick/internal/todo"
)

// loadErrMsg is the user-facing message for a failed or malformed load.
const loadErrMsg = "Network/API error"

// API is the todo service surface the session drives. The HTTP client
// implements it; tests substitute a fake.
type API interface {
	List(ctx context.Context) ([]todo.Todo, error)
	Create(ctx context.Context, title string) (todo.Todo, error)
	Update(ctx context.Context, id int64, patch todo.Patch) (todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Edit is the active edit: which todo is being composed and the
// in-progress draft title.
type Edit struct {
	ID    int64
	Draft string
}

// State is a point-in-time snapshot of the session for rendering. Edit is
// nil when every row is in view mode; the session never holds more than
// one edit, so "at most one item editable" is structural.
type State struct {
	Todos []todo.Todo
	Err   string
	Edit  *Edit
}

// Session is safe for concurrent use; overlapping gestures may interleave
// their reloads, and the sequence guard ensures only the most recently
// issued load can land.
type Session struct {
	mu      sync.Mutex
	api     API
	todos   []todo.Todo
	errMsg  string
	edit    *Edit
	loadSeq uint64
	focus   bool
}

// New creates an empty session over the given API.
func New(api API) *Session {
	return &Session{api: api}
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Todos: make([]todo.Todo, len(s.todos)),
		Err:   s.errMsg,
	}
	copy(st.Todos, s.todos)
	if s.edit != nil {
		e := *s.edit
		st.Edit = &e
	}
	return st
}

// Load fetches the authoritative list. On success the list is replaced
// wholesale; on failure the list is cleared and an error is surfaced,
// never a stale or partial display. A load that completes after a newer
// one was issued is discarded.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	todos, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		// A newer load owns the list now
		return
	}
	if err != nil {
		s.todos = nil
		s.errMsg = loadErrMsg
		return
	}
	s.todos = todos
	s.errMsg = ""
}

// Add creates a todo then reloads. A whitespace-only title is a guarded
// no-op: no request is issued and the state is unchanged. The create's own
// outcome is not inspected; the follow-up load is the only authority.
func (s *Session) Add(ctx context.Context, title string) {
	if !todo.ValidTitle(title) {
		return
	}
	_, _ = s.api.Create(ctx, title)
	s.Load(ctx)
}

// Toggle flips a todo's done flag then reloads. The patch carries only
// done, so the title is untouched server-side.
func (s *Session) Toggle(ctx context.Context, id int64, currentDone bool) {
	next := !currentDone
	_, _ = s.api.Update(ctx, id, todo.Patch{Done: &next})
	s.Load(ctx)
}

// StartEdit enters edit mode for the given id, replacing any edit already
// in progress (last click wins, no confirmation). The draft starts as the
// item's current title. Returns false when the id is not in the list.
func (s *Session) StartEdit(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.todos {
		if t.ID == id {
			s.edit = &Edit{ID: id, Draft: t.Title}
			s.focus = true
			return true
		}
	}
	return false
}

// TakeFocus consumes the pending focus-and-select request raised by
// StartEdit. The view calls this once per render to decide whether to
// focus the edit field and select its content.
func (s *Session) TakeFocus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.focus
	s.focus = false
	return f
}

// EditKeystroke updates the draft for the active edit. Keystrokes for any
// other id are ignored. No network call.
func (s *Session) EditKeystroke(id int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit != nil && s.edit.ID == id {
		s.edit.Draft = text
	}
}

// CancelEdit discards the draft and returns to view mode. No network call.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edit = nil
	s.focus = false
}

// SaveEdit commits the active draft. A draft that trims to empty is
// silently discarded, exactly like CancelEdit. Otherwise the trimmed
// draft is sent as a title-only patch and the list is reloaded.
func (s *Session) SaveEdit(ctx context.Context, id int64) {
	s.mu.Lock()
	if s.edit == nil || s.edit.ID != id {
		s.mu.Unlock()
		return
	}
	draft := strings.TrimSpace(s.edit.Draft)
	s.edit = nil
	s.focus = false
	s.mu.Unlock()

	if draft == "" {
		return
	}

	_, _ = s.api.Update(ctx, id, todo.Patch{Title: &draft})
	s.Load(ctx)
}

// Remove deletes a todo then reloads. A mid-edit id needs no special
// handling: the reload simply drops the row.
func (s *Session) Remove(ctx context.Context, id int64) {
	_ = s.api.Delete(ctx, id)
	s.Load(ctx)
}
