package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AdminSecret protects organizer routes when non-empty.
	AdminSecret string
	// WebDir is served at the root when it exists.
	WebDir string
	Log    *slog.Logger
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(h *EventHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(opts.Log))
	r.Use(CORS)

	admin := RequireAdmin(opts.AdminSecret, opts.Log)

	r.Get("/health", HealthCheck)

	r.Post("/registrations", h.Submit)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Post("/{id}/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/", h.CreateEvent)
			r.Get("/{id}/report", h.Report)
		})
	})
	r.With(admin).Get("/reports", h.ReportAll)

	if opts.WebDir != "" {
		if fi, err := os.Stat(opts.WebDir); err == nil && fi.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(opts.WebDir)))
		}
	}

	return r
}
