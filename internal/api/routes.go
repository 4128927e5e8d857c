package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"moviely/internal/editor"
	"moviely/internal/logging"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ServerConfig holds what the router needs.
type ServerConfig struct {
	Editor  *editor.Manager
	Token   string
	Version string
	Logger  *slog.Logger
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	started := time.Now()
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "route not found", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler(cfg, started))

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Token, cfg.Logger))

			r.Get("/actions", listActionsHandler(cfg))
			r.Get("/actions/{name}", describeActionHandler(cfg))
			r.Get("/templates", listTemplatesHandler(cfg))

			r.Get("/projects", listProjectsHandler(cfg))
			r.Post("/projects", createProjectHandler(cfg))
			r.Get("/projects/{id}", getProjectHandler(cfg))
			r.Delete("/projects/{id}", deleteProjectHandler(cfg))
			r.Get("/projects/{id}/info", projectInfoHandler(cfg))
			r.Get("/projects/{id}/plan", projectPlanHandler(cfg))
			r.Post("/projects/{id}/actions/{name}", applyActionHandler(cfg))
			r.Post("/projects/{id}/render", renderProjectHandler(cfg))
		})
	})

	return r
}
