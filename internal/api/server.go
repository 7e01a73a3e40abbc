// Package api exposes the dashboard over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/shelfboard/internal/ratelimit"
	"github.com/listenupapp/shelfboard/internal/service"
)

// Services groups the business services used by the handlers.
type Services struct {
	Dashboard *service.DashboardService
	BookInfo  *service.BookInfoService
}

// Pinger reports whether the catalog store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	Title       string
	Version     string
	CORSOrigins []string

	// Source is checked by the health endpoint. Nil reports degraded.
	Source Pinger

	// SummaryLimiter throttles summary generation per client. Nil disables it.
	SummaryLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services       *Services
	source         Pinger
	summaryLimiter *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	api            huma.API
	logger         *slog.Logger
}

// NewServer creates the router, the huma API on top of it, and registers all routes.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Title == "" {
		opts.Title = "Shelfboard API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(corsHandler(opts.CORSOrigins))

	humaConfig := huma.DefaultConfig(opts.Title, opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services:       services,
		source:         opts.Source,
		summaryLimiter: opts.SummaryLimiter,
		router:         router,
		api:            api,
		logger:         logger,
	}

	s.registerHealthRoutes()
	s.registerDashboardRoutes()
	s.registerBookRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}
