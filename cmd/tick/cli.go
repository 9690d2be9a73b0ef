package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/penwick/tick/internal/api"
	"github.com/penwick/tick/internal/client"
	"github.com/penwick/tick/internal/config"
	"github.com/penwick/tick/internal/db"
	"github.com/penwick/tick/internal/errors"
	"github.com/penwick/tick/internal/mcp"
	"github.com/penwick/tick/internal/ops"
	"github.com/penwick/tick/internal/session"
	"github.com/penwick/tick/internal/todo"
	"github.com/penwick/tick/internal/tui"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "tick",
		Usage:   "Todo list with an HTTP API, terminal UI, and MCP server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "Base URL of the todo API for client commands",
				Value: cfg.APIBaseURL,
			},
		},
		Commands: []*cli.Command{
			serveCmd(cfg, baseDir),
			uiCmd(),
			mcpCmd(cfg, baseDir),
			addCmd(),
			listCmd(),
			toggleCmd(),
			editCmd(),
			rmCmd(),
			exportCmd(cfg, baseDir),
			importCmd(cfg, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// openStore initializes the local database for server-side commands.
func openStore(baseDir string, cfg *config.Config) (*sql.DB, error) {
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)
	return database, nil
}

// apiClient builds the HTTP client for the configured API base URL.
func apiClient(c *cli.Context) *client.Client {
	return client.New(c.String("api"))
}

// serveCmd creates the serve command.
func serveCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the todo REST API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			if bind := c.String("bind"); bind != "" {
				cfg.Bind = bind
			}
			if port := c.Int("port"); port != 0 {
				cfg.Port = port
			}

			database, err := openStore(baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer database.Close()

			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "tick",
			})

			srv := api.NewServer(database, cfg, logger, Version)
			if err := api.Run(srv, logger); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// uiCmd creates the interactive terminal UI command.
func uiCmd() *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Open the interactive todo list (talks to the API)",
		Action: func(c *cli.Context) error {
			s := session.New(apiClient(c))
			if err := tui.Run(s); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// mcpCmd creates the MCP stdio server command.
func mcpCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			database, err := openStore(baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer database.Close()

			if err := mcp.Run(database, cfg, baseDir, Version); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// addCmd creates the add command.
func addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new todo",
		ArgsUsage: "<title>",
		Action: func(c *cli.Context) error {
			title := strings.Join(c.Args().Slice(), " ")
			if !todo.ValidTitle(title) {
				return outputError(errors.NewInvalidRequest("title is required and must not be blank"))
			}

			created, err := apiClient(c).Create(c.Context, title)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(created)
		},
	}
}

// listCmd creates the list command.
func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all todos, newest first",
		Action: func(c *cli.Context) error {
			todos, err := apiClient(c).List(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(todos)
		},
	}
}

// toggleCmd creates the toggle command.
func toggleCmd() *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Flip a todo's completion state",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseIDArg(c)
			if err != nil {
				return outputError(err)
			}

			cl := apiClient(c)
			todos, err := cl.List(c.Context)
			if err != nil {
				return outputError(err)
			}

			var current *todo.Todo
			for i := range todos {
				if todos[i].ID == id {
					current = &todos[i]
					break
				}
			}
			if current == nil {
				return outputError(errors.NewNotFound(id))
			}

			next := !current.Done
			updated, err := cl.Update(c.Context, id, todo.Patch{Done: &next})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(updated)
		},
	}
}

// editCmd creates the edit command.
func editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace a todo's title",
		ArgsUsage: "<id> <title>",
		Action: func(c *cli.Context) error {
			id, err := parseIDArg(c)
			if err != nil {
				return outputError(err)
			}

			title := strings.Join(c.Args().Tail(), " ")
			if !todo.ValidTitle(title) {
				return outputError(errors.NewInvalidRequest("title must not be blank"))
			}

			updated, err := apiClient(c).Update(c.Context, id, todo.Patch{Title: &title})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(updated)
		},
	}
}

// rmCmd creates the rm command.
func rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a todo permanently",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseIDArg(c)
			if err != nil {
				return outputError(err)
			}

			if err := apiClient(c).Delete(c.Context, id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"deleted": true, "id": id})
		},
	}
}

// exportCmd creates the export command. It works on the local store
// directly rather than through the API.
func exportCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all todos to a Markdown checklist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Destination file (defaults to the exports directory)"},
		},
		Action: func(c *cli.Context) error {
			database, err := openStore(baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer database.Close()

			ctx, cancel := context.WithTimeout(c.Context, cfg.StoreTimeout())
			defer cancel()

			output, err := ops.Export(ctx, database, ops.ExportInput{
				Path:    c.String("path"),
				BaseDir: baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command. Like export, it works on the
// local store directly.
func importCmd(cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import todos from a Markdown checklist",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			database, err := openStore(baseDir, cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer database.Close()

			ctx, cancel := context.WithTimeout(c.Context, cfg.StoreTimeout())
			defer cancel()

			output, err := ops.Import(ctx, database, ops.ImportInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// parseIDArg reads the first positional argument as a todo id.
func parseIDArg(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id: %s", c.Args().First()))
	}
	return id, nil
}

// outputJSON prints as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tickErr, ok := err.(*errors.TickError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tickErr.Code, tickErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
