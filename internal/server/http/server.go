// Package httpserver provides the HTTP REST API server for the publication
// cost service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pubcost/publication-cost-service/internal/analysis"
	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/observability"
	"github.com/pubcost/publication-cost-service/internal/openalex"
)

// MetadataSource defines the scholarly metadata operations the server needs.
// The OpenAlex client satisfies it; tests substitute a fake.
type MetadataSource interface {
	FetchWorks(ctx context.Context, subject openalex.Subject, maxWorks int) ([]domain.WorkRecord, error)
	SearchAuthors(ctx context.Context, query string) ([]domain.AuthorProfile, error)
	FindAuthorByORCID(ctx context.Context, orcid string) (*domain.AuthorProfile, error)
	GetAuthor(ctx context.Context, id string) (*domain.AuthorProfile, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	source     MetadataSource
	engine     *analysis.Engine
	logger     zerolog.Logger
	metrics    *observability.Metrics

	maxWorks  int
	chartTopN int
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxWorks caps how many recent works each analysis covers.
	MaxWorks int

	// ChartTopPublishers is how many publishers the cost chart breaks out.
	ChartTopPublishers int
}

// NewServer creates a new HTTP server with all dependencies.
// metrics may be nil.
func NewServer(
	cfg Config,
	source MetadataSource,
	engine *analysis.Engine,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Server {
	s := &Server{
		source:    source,
		engine:    engine,
		logger:    logger.With().Str("component", "http-server").Logger(),
		metrics:   metrics,
		maxWorks:  cfg.MaxWorks,
		chartTopN: cfg.ChartTopPublishers,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)

	// Health endpoint
	r.Get("/healthz", s.healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/authors", s.lookupAuthors)
		r.Get("/authors/{authorID}", s.getAuthor)
		r.Get("/authors/{authorID}/analysis", s.analyzeAuthor)
		r.Get("/authors/{authorID}/analysis/export", s.exportAuthorAnalysis)
		r.Get("/institutions/{institutionID}/analysis", s.analyzeInstitution)
		r.Get("/funders/{funderID}/analysis", s.analyzeFunder)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
