package ops

import (
	"context"
	"database/sql"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/todo"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required, a Markdown file with task-list items
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import reads a Markdown file and creates one todo per task-list item
// (`- [ ] title` / `- [x] title`), preserving the checked state. Items
// whose text is empty after trimming are skipped, matching the service's
// title validation. Non-task content is ignored.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	source, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest("cannot read import file: " + err.Error())
	}

	items := parseTaskList(source)

	out := &ImportOutput{}
	for _, item := range items {
		if !todo.ValidTitle(item.title) {
			out.Skipped++
			continue
		}

		created, err := db.Insert(ctx, database, item.title)
		if err != nil {
			return nil, err
		}
		if item.done {
			created.Done = true
			if err := db.UpdateByID(ctx, database, created); err != nil {
				return nil, err
			}
		}
		out.Imported++
	}

	return out, nil
}

type taskItem struct {
	title string
	done  bool
}

// parseTaskList walks the Markdown AST and collects task-list items.
func parseTaskList(source []byte) []taskItem {
	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	doc := md.Parser().Parse(text.NewReader(source))

	var items []taskItem
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		box, ok := n.(*east.TaskCheckBox)
		if !ok {
			return ast.WalkContinue, nil
		}

		// The checkbox's siblings hold the item text.
		var sb strings.Builder
		for sib := box.NextSibling(); sib != nil; sib = sib.NextSibling() {
			sb.Write(sib.Text(source))
		}

		items = append(items, taskItem{
			title: strings.TrimSpace(sb.String()),
			done:  box.IsChecked,
		})
		return ast.WalkContinue, nil
	})

	return items
}
