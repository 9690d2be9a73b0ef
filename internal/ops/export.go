package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path    string // optional, default: <base>/exports/todos-<timestamp>.md
	BaseDir string // used for the default path
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Export writes the full list as a Markdown checklist, one task-list item
// per todo, in the same id-descending order List returns.
func Export(ctx context.Context, database *sql.DB, input ExportInput) (*ExportOutput, error) {
	exportPath := input.Path
	if exportPath == "" {
		if input.BaseDir == "" {
			return nil, errors.NewInvalidRequest("path is required when no base directory is set")
		}
		name := fmt.Sprintf("todos-%s.md", time.Now().Format("20060102-150405"))
		exportPath = filepath.Join(input.BaseDir, "exports", name)
		if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	todos, err := db.List(ctx, database)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("# Todos\n\n")
	for _, t := range todos {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		fmt.Fprintf(&sb, "- %s %s\n", box, t.Title)
	}

	if err := os.WriteFile(exportPath, []byte(sb.String()), 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{Path: exportPath, Count: len(todos)}, nil
}
