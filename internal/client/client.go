// Package client speaks to the todo REST API over HTTP. It is the
// transport behind the interactive session and the one-shot CLI commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/penwick/tick/internal/todo"
)

// Client is a thin HTTP client for the todo service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the given base URL, which includes the /api
// prefix (e.g. "http://localhost:8000/api"). No retries, no timeout beyond
// the transport default; callers bound calls with their context.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
	}
}

// List fetches the full todo list, newest first. A response that is not a
// JSON array fails decoding and surfaces as an error, never as a partial
// list.
func (c *Client) List(ctx context.Context) ([]todo.Todo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/todos", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list todos: unexpected status %d", resp.StatusCode)
	}

	var todos []todo.Todo
	if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return nil, fmt.Errorf("list todos: unexpected response shape: %w", err)
	}
	if todos == nil {
		todos = []todo.Todo{}
	}

	return todos, nil
}

// Create adds a new todo and returns the stored record with its id.
func (c *Client) Create(ctx context.Context, title string) (todo.Todo, error) {
	body := map[string]string{"title": title}
	var created todo.Todo
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/todos", body, http.StatusCreated, &created); err != nil {
		return todo.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

// Update applies a partial update and returns the post-update record.
// Fields left nil in the patch keep their stored value.
func (c *Client) Update(ctx context.Context, id int64, patch todo.Patch) (todo.Todo, error) {
	url := fmt.Sprintf("%s/todos/%d", c.baseURL, id)
	var updated todo.Todo
	if err := c.doJSON(ctx, http.MethodPut, url, patch, http.StatusOK, &updated); err != nil {
		return todo.Todo{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes a todo permanently.
func (c *Client) Delete(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/todos/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete todo %d: unexpected status %d", id, resp.StatusCode)
	}

	return nil
}

// doJSON sends a JSON request body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, url string, in any, wantStatus int, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
