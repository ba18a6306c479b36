// Package server exposes a running simulation and the run history over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/metrics"
	"github.com/me/schedsim/internal/store"
	"github.com/me/schedsim/pkg/model"
)

// Server is the schedsim HTTP observer. It holds the most recent snapshot
// delivered by the simulation loop and serves it read-only.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store        // optional; run history endpoints return 503 without it
	metrics   *metrics.Collector // optional; /metrics is not mounted without it

	mu     sync.RWMutex
	latest *model.Snapshot
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore enables the run history endpoints.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithMetrics mounts the collector's registry at /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Observe records snap as the latest state. It is safe to call from the
// simulation goroutine while requests are being served.
func (s *Server) Observe(snap model.Snapshot) {
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()
}

// Latest returns the most recent snapshot, or false before the first tick.
func (s *Server) Latest() (model.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return model.Snapshot{}, false
	}
	return *s.latest, true
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/snapshot", s.handleSnapshot)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
			})
		})
	})
}
