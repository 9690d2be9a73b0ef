package api

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/penwick/tick/internal/config"
)

// NewServer creates and configures the HTTP server for the todo REST API.
func NewServer(database *sql.DB, cfg *config.Config, logger *log.Logger, version string) *http.Server {
	h := &Handlers{
		db:     database,
		cfg:    cfg,
		logger: logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /api/todos", h.HandleCreate)
	mux.HandleFunc("GET /api/todos", h.HandleList)
	mux.HandleFunc("PUT /api/todos/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/todos/{id}", h.HandleDelete)
	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version})
	})

	handler := requestLogger(logger, corsHandler(mux))

	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}
}

// corsHandler applies a permissive cross-origin policy and short-circuits
// preflight requests. Browsers send OPTIONS before PUT/DELETE.
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *log.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("todo API running", "addr", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
