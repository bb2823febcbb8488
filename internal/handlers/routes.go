package handlers

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tasklist/internal/config"
)

// NewRouter mounts the task routes under every configured prefix and, when
// static is non-nil, serves the browser page from it.
func NewRouter(h *Handlers, cfg config.ServerConfig, static fs.FS) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)

	// Task API routes
	for _, prefix := range cfg.Prefixes {
		r.Route(prefix, func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
		})
	}

	if static != nil {
		first := "/api/tasks"
		if len(cfg.Prefixes) > 0 {
			first = cfg.Prefixes[0]
		}
		apiURL, _ := json.Marshal(first)
		r.Get("/config.js", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			fmt.Fprintf(w, "window.TASKLIST_API_URL = %s;\n", apiURL)
		})
		r.Handle("/*", http.FileServer(http.FS(static)))
	}

	return r
}
