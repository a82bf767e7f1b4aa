package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise-backend/internal/api/handlers"
	"github.com/pennywise-app/pennywise-backend/internal/api/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	importer   handlers.ImportRunner
}

// NewServer creates a new API server.
// If importer is nil, the import trigger endpoint will not be available.
func NewServer(cfg Config, repo storage.Repository, importer handlers.ImportRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		repo:     repo,
		importer: importer,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// CORS
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Accounts
		accountsHandler := handlers.NewAccountsHandler(s.repo)
		r.Get("/accounts", accountsHandler.List)
		r.Post("/accounts", accountsHandler.Create)
		r.Get("/accounts/{id}", accountsHandler.Get)

		// Transactions
		transactionsHandler := handlers.NewTransactionsHandler(s.repo)
		r.Get("/transactions", transactionsHandler.List)
		r.Post("/transactions", transactionsHandler.Create)
		r.Get("/transactions/{id}", transactionsHandler.Get)

		// Suggestions awaiting review
		suggestionsHandler := handlers.NewSuggestionsHandler(s.repo)
		r.Get("/suggestions", suggestionsHandler.List)
		r.Get("/suggestions/{id}", suggestionsHandler.Get)
		r.Post("/suggestions/{id}/accept", suggestionsHandler.Accept)
		r.Post("/suggestions/{id}/dismiss", suggestionsHandler.Dismiss)

		// Import runs (historical)
		runsHandler := handlers.NewRunsHandler(s.repo)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.repo)
		r.Get("/stats", statsHandler.Get)
		r.Get("/stats/trips", statsHandler.Trips)

		// Import trigger
		if s.importer != nil {
			importHandler := handlers.NewImportHandler(s.repo, s.importer)
			r.Post("/import", importHandler.Start)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
