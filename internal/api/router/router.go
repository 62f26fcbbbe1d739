package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/internal/call"
	httpmiddleware "github.com/wolfman30/apptline/internal/http/middleware"
	"github.com/wolfman30/apptline/internal/session"
	"github.com/wolfman30/apptline/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	CallHandler         *call.Handler
	SessionHandler      *session.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", cfg.AppointmentsHandler.List)
		r.Post("/", cfg.AppointmentsHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.Get)
			if cfg.CallHandler != nil {
				r.Post("/call", cfg.CallHandler.Open)
			}
		})
	})

	if cfg.CallHandler != nil {
		r.Route("/calls/{sessionID}", func(r chi.Router) {
			r.Post("/messages", cfg.CallHandler.Message)
			r.Post("/reschedule", cfg.CallHandler.Reschedule)
			r.Get("/transcript", cfg.CallHandler.Transcript)
		})
	}

	if cfg.SessionHandler != nil {
		r.Route("/session", func(r chi.Router) {
			r.Get("/appointments", cfg.SessionHandler.Get)
			r.Post("/refresh", cfg.SessionHandler.Refresh)
		})
	}

	return r
}
