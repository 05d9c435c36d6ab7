// Package server exposes the HTTP API: fact generation, fact checking,
// school research, and fact reports.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/factgen"
	"isthatstilltrue/internal/logger"
	"isthatstilltrue/internal/memories"
	"isthatstilltrue/internal/persistence"
)

// FactGenerator runs the generation pipeline for one request.
type FactGenerator interface {
	Generate(ctx context.Context, country string, graduationYear int, language string) (*factgen.Result, error)
}

// FactChecker evaluates a single statement.
type FactChecker interface {
	Check(ctx context.Context, statement string) (*core.FactCheckVerdict, error)
}

// SchoolResearcher produces school memory bundles.
type SchoolResearcher interface {
	Research(ctx context.Context, req memories.Request) (*memories.Result, error)
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	generator  FactGenerator
	checker    FactChecker
	researcher SchoolResearcher
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(db persistence.Database, generator FactGenerator, checker FactChecker, researcher SchoolResearcher, cfg config.Server) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		db:         db,
		generator:  generator,
		checker:    checker,
		researcher: researcher,
		config:     cfg,
		log:        logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 90*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(config.Duration(s.config.RequestTimeout, 60*time.Second)))

	// Any origin may call the API; preflight OPTIONS is a no-op 200.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/status", s.handleStatus)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate-facts", s.handleGenerateFacts)
		r.Post("/check-fact", s.handleCheckFact)
		r.Post("/research-school-memories", s.handleResearchSchoolMemories)
		r.Post("/report-fact", s.handleReportFact)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
