package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/penwick/tick/internal/config"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/ops"
	"github.com/penwick/tick/internal/todo"
)

// Handlers contains HTTP route handlers for the todo REST API.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *log.Logger
}

// createRequest is the POST body. Title is a pointer so a missing field is
// distinguishable from an empty string.
type createRequest struct {
	Title *string `json:"title"`
}

// HandleCreate handles POST /api/todos.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	if req.Title == nil {
		h.writeError(w, errors.NewInvalidRequest("title is required"))
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	created, err := ops.Create(ctx, h.db, ops.CreateInput{Title: *req.Title})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /api/todos.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()

	todos, err := ops.List(ctx, h.db)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

// HandleUpdate handles PUT /api/todos/{id}. The body is a partial update:
// omitted fields keep their stored value.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var patch todo.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	updated, err := ops.Update(ctx, h.db, ops.UpdateInput{ID: id, Patch: patch})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/todos/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: id}); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// storeCtx bounds a request's store work, queueing for a pooled connection
// included, with the configured timeout.
func (h *Handlers) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.cfg.StoreTimeout())
}

// parseID extracts the {id} path value.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("id must be an integer")
	}
	return id, nil
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a failure to its HTTP shape. Internal causes are logged
// and never leaked to the client: the body for a 500 is always the opaque
// {"error":"internal_error"}.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	tErr, ok := err.(*errors.TickError)
	if !ok {
		tErr = errors.NewInternal(err)
	}

	switch tErr.Code {
	case errors.ErrNotFound:
		// No body on 404
		w.WriteHeader(http.StatusNotFound)
	case errors.ErrInvalidRequest:
		writeJSON(w, tErr.Status, map[string]string{
			"error":   "invalid_request",
			"message": tErr.Message,
		})
	case errors.ErrResourceExhausted:
		h.logger.Error("store exhausted", "cause", tErr.Message)
		writeJSON(w, tErr.Status, map[string]string{"error": "resource_exhausted"})
	default:
		h.logger.Error("internal error", "cause", tErr.Message)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
	}
}
