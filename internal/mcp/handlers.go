package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/penwick/tick/internal/config"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/ops"
	"github.com/penwick/tick/internal/todo"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// storeCtx bounds a tool call's store work the same way the HTTP layer
// bounds a request.
func (h *Handlers) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.cfg.StoreTimeout())
}

// Request types for each tool

// CreateRequest represents the arguments for todo_create.
type CreateRequest struct {
	Title string `json:"title"`
}

// UpdateRequest represents the arguments for todo_update.
// Absent fields stay nil and leave the stored value untouched.
type UpdateRequest struct {
	ID    int64   `json:"id"`
	Title *string `json:"title,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// DeleteRequest represents the arguments for todo_delete.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// ExportRequest represents the arguments for todo_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for todo_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleCreate handles the todo_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	result, err := ops.Create(ctx, h.db, ops.CreateInput{Title: input.Title})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the todo_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	todos, err := ops.List(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(todos)
}

// HandleUpdate handles the todo_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	result, err := ops.Update(ctx, h.db, ops.UpdateInput{
		ID:    input.ID,
		Patch: todo.Patch{Title: input.Title, Done: input.Done},
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the todo_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	if err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID}); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"deleted": true, "id": input.ID})
}

// HandleExport handles the todo_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	result, err := ops.Export(ctx, h.db, ops.ExportInput{
		Path:    input.Path,
		BaseDir: h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the todo_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ctx, cancel := h.storeCtx(ctx)
	defer cancel()

	result, err := ops.Import(ctx, h.db, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tickErr, ok := err.(*errors.TickError); ok {
		msg := tickErr.Message
		if tickErr.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		}
		errorObj := map[string]any{
			"code":    tickErr.Code,
			"message": msg,
			"status":  tickErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tickErr.Code != errors.ErrInternal && tickErr.Details != nil {
			errorObj["details"] = tickErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
