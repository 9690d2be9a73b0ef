package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/penwick/tick/internal/config"
	"github.com/penwick/tick/internal/db"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, string) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, config.DefaultConfig(), tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result payload: %v", err)
	}
	return payload
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	payload := resultPayload(t, result)
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatal("no error object in payload")
	}
	code, _ := errorObj["code"].(string)
	if code != expectedCode {
		t.Errorf("error code = %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}

// TestHandleCreate tests the create handler.
func TestHandleCreate(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg, tmpDir)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "create valid todo",
			args:      map[string]any{"title": "write release notes"},
			wantError: false,
		},
		{
			name:      "create without title",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "create with whitespace title",
			args:      map[string]any{"title": "   "},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

// TestHandleUpdate tests the update handler's merge semantics.
func TestHandleUpdate(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg, tmpDir)
	ctx := context.Background()

	createResult, _ := h.HandleCreate(ctx, makeRequest(map[string]any{"title": "original"}))
	if createResult.IsError {
		t.Fatalf("setup create failed: %v", extractErrorMessage(createResult))
	}
	id := resultPayload(t, createResult)["id"].(float64)

	// Provided done=true flips completion and keeps the title.
	result, err := h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "done": true}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	if payload["title"] != "original" {
		t.Errorf("title = %v, want preserved original", payload["title"])
	}
	if payload["done"] != true {
		t.Errorf("done = %v, want true", payload["done"])
	}

	// Provided done=false overwrites back to false.
	result, _ = h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "done": false}))
	if resultPayload(t, result)["done"] != false {
		t.Error("provided done=false did not overwrite")
	}

	// Blank title is rejected.
	result, _ = h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "title": "  "}))
	if !result.IsError {
		t.Error("expected error for blank title")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")

	// Unknown id is NOT_FOUND.
	result, _ = h.HandleUpdate(ctx, makeRequest(map[string]any{"id": 99999, "done": true}))
	if !result.IsError {
		t.Error("expected error for unknown id")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleDelete tests the delete handler.
func TestHandleDelete(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg, tmpDir)
	ctx := context.Background()

	createResult, _ := h.HandleCreate(ctx, makeRequest(map[string]any{"title": "doomed"}))
	id := resultPayload(t, createResult)["id"].(float64)

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	// Deleting again reports NOT_FOUND.
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if !result.IsError {
		t.Error("expected error deleting a missing todo")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleList tests listing order and the empty case.
func TestHandleList(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg, tmpDir)
	ctx := context.Background()

	result, err := h.HandleList(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	text := result.Content[0].(mcp.TextContent).Text
	var todos []map[string]any
	if err := json.Unmarshal([]byte(text), &todos); err != nil {
		t.Fatalf("list result is not a JSON array: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("empty store listed %d todos", len(todos))
	}

	for _, title := range []string{"first", "second", "third"} {
		h.HandleCreate(ctx, makeRequest(map[string]any{"title": title}))
	}

	result, _ = h.HandleList(ctx, makeRequest(nil))
	text = result.Content[0].(mcp.TextContent).Text
	if err := json.Unmarshal([]byte(text), &todos); err != nil {
		t.Fatalf("list result is not a JSON array: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("listed %d todos, want 3", len(todos))
	}
	if todos[0]["title"] != "third" {
		t.Errorf("first listed = %v, want newest first", todos[0]["title"])
	}
}

// TestHandleExportImport round-trips the list through a Markdown file.
func TestHandleExportImport(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)
	h := NewHandlers(database, cfg, tmpDir)
	ctx := context.Background()

	h.HandleCreate(ctx, makeRequest(map[string]any{"title": "keep open"}))
	createResult, _ := h.HandleCreate(ctx, makeRequest(map[string]any{"title": "finish"}))
	id := resultPayload(t, createResult)["id"].(float64)
	h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id, "done": true}))

	path := filepath.Join(tmpDir, "out.md")
	result, err := h.HandleExport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("export failed: %v", extractErrorMessage(result))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "- [x] finish") {
		t.Errorf("export missing checked item:\n%s", data)
	}

	// Import into a fresh store.
	freshDir := t.TempDir()
	freshDB, err := db.Init(freshDir)
	if err != nil {
		t.Fatalf("failed to init fresh db: %v", err)
	}
	defer freshDB.Close()

	h2 := NewHandlers(freshDB, cfg, freshDir)
	result, _ = h2.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	if result.IsError {
		t.Fatalf("import failed: %v", extractErrorMessage(result))
	}
	payload := resultPayload(t, result)
	if payload["imported"] != float64(2) {
		t.Errorf("imported = %v, want 2", payload["imported"])
	}

	// Import without a path is rejected.
	result, _ = h2.HandleImport(ctx, makeRequest(map[string]any{}))
	if !result.IsError {
		t.Error("expected error importing without a path")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

// TestToolRegistry sanity-checks the registered tool set.
func TestToolRegistry(t *testing.T) {
	want := []string{"todo_create", "todo_list", "todo_update", "todo_delete", "todo_export", "todo_import"}
	names := AllToolNames()
	if len(names) != len(want) {
		t.Fatalf("registered %d tools, want %d", len(names), len(want))
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	for _, n := range want {
		if !set[n] {
			t.Errorf("tool %q not registered", n)
		}
	}
}

// TestNewServer ensures server construction wires the full registry.
func TestNewServer(t *testing.T) {
	database, cfg, tmpDir := testSetup(t)

	s := NewServer(database, cfg, tmpDir, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
