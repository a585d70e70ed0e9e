// Package router assembles the HTTP routing tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/triage-ai-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/triage-ai-platform/internal/http/middleware"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	TriageHandler      *handlers.TriageHandler
	OrdersHandler      *handlers.OrdersHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/triage", cfg.TriageHandler.Run)
		v1.Route("/orders", func(o chi.Router) {
			o.Post("/confirm", cfg.OrdersHandler.Confirm)
			o.Get("/last", cfg.OrdersHandler.Last)
		})
	})

	return r
}
