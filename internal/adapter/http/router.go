package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/subledger/internal/adapter/http/handler"
	"github.com/iho/subledger/internal/adapter/http/middleware"
	"github.com/iho/subledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PartyHandler          *handler.PartyHandler
	DocumentHandler       *handler.DocumentHandler
	LedgerHandler         *handler.LedgerHandler
	ReconciliationHandler *handler.ReconciliationHandler
	SchemaHandler         *handler.SchemaHandler
	HealthHandler         *handler.HealthHandler

	// Optional
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Parties
		r.Route("/parties", func(r chi.Router) {
			r.Post("/", cfg.PartyHandler.Create)
			r.Get("/", cfg.PartyHandler.List)
			r.Get("/{id}", cfg.PartyHandler.Get)
			r.Patch("/{id}", cfg.PartyHandler.Update)
			r.Get("/{id}/ledger", cfg.LedgerHandler.Statement)
			r.Post("/{id}/reconciliations", cfg.ReconciliationHandler.Open)
		})

		// Source documents
		r.Route("/documents/{kind}", func(r chi.Router) {
			r.Put("/", cfg.DocumentHandler.Save)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
		})

		// Reconciliation sessions
		r.Route("/reconciliations/{sid}", func(r chi.Router) {
			r.Get("/", cfg.ReconciliationHandler.Get)
			r.Delete("/", cfg.ReconciliationHandler.Close)
			r.Post("/start", cfg.ReconciliationHandler.Start)
			r.Post("/selection", cfg.ReconciliationHandler.Select)
			r.Post("/finalize", cfg.ReconciliationHandler.Finalize)
		})

		r.Get("/schemas", cfg.SchemaHandler.List)
		r.Get("/schemas/{name}", cfg.SchemaHandler.Get)
	})

	return r
}
