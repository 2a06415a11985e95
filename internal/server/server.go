// Package server provides the HTTP API for Synapse.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/synapse/internal/config"
	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/retrieval"
	"github.com/hyperjump/synapse/internal/store"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Synapse API.
type Server struct {
	orchestrator *retrieval.Orchestrator
	pipeline     *ingest.Pipeline
	store        store.Store
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orch *retrieval.Orchestrator,
	pipeline *ingest.Pipeline,
	st store.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		orchestrator: orch,
		pipeline:     pipeline,
		store:        st,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)
	r.Post("/search", s.handleSearch)
	r.Post("/ingest-text", s.handleIngestText)
	r.Post("/ingest-file", s.handleIngestFile)
	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
