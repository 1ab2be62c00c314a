package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	"github.com/iho/fintrack/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	TransactionHandler *handler.TransactionHandler
	CategoryHandler    *handler.CategoryHandler
	DashboardHandler   *handler.DashboardHandler
	LiveHandler        *handler.LiveHandler
	HealthHandler      *handler.HealthHandler

	TokenVerifier    middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      middleware.HTTPRecorder
	MetricsGatherer  prometheus.Gatherer
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.With(middleware.AuthMiddleware(cfg.TokenVerifier)).Get("/me", cfg.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

			// Idempotency middleware for mutating requests
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/categories", cfg.CategoryHandler.List)

			// Transactions
			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/", cfg.TransactionHandler.List)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.Put("/{id}", cfg.TransactionHandler.Update)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			})

			// Dashboard
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", cfg.DashboardHandler.Summary)
				r.Get("/export.csv", cfg.DashboardHandler.ExportCSV)
				r.Get("/export.pdf", cfg.DashboardHandler.ExportPDF)
				if cfg.LiveHandler != nil {
					r.Get("/live", cfg.LiveHandler.Serve)
				}
			})
		})
	})

	return r
}
