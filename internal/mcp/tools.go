package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions shared by the stdio server.

var createToolDef = mcp.NewTool("todo_create",
	mcp.WithDescription("Create a new todo. The title must not be blank; new todos start not done."),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Title of the todo. Must contain at least one non-whitespace character."),
	),
)

var listToolDef = mcp.NewTool("todo_list",
	mcp.WithDescription("List every todo, newest first."),
)

var updateToolDef = mcp.NewTool("todo_update",
	mcp.WithDescription("Update a todo by id. Only the fields provided change; omitted fields keep their stored value. Providing done=false marks the todo as not done."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Numeric id of the todo to update."),
	),
	mcp.WithString("title",
		mcp.Description("New title. Must not be blank when provided."),
	),
	mcp.WithBoolean("done",
		mcp.Description("New completion state."),
	),
)

var deleteToolDef = mcp.NewTool("todo_delete",
	mcp.WithDescription("Delete a todo by id. The deletion is permanent and the id is never reused."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Numeric id of the todo to delete."),
	),
)

var exportToolDef = mcp.NewTool("todo_export",
	mcp.WithDescription("Export all todos to a Markdown checklist file."),
	mcp.WithString("path",
		mcp.Description("Destination file path. Defaults to a timestamped file under the exports directory."),
	),
)

var importToolDef = mcp.NewTool("todo_import",
	mcp.WithDescription("Import todos from a Markdown file. Each task-list item becomes one todo; checked items are imported as done."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path of the Markdown file to read."),
	),
)
