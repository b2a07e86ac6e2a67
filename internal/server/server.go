// Package server exposes the intake pipeline over HTTP: submit content,
// fetch a stored run, export its records, read cross-run stats.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fleetdesk/booking-intake/internal/export"
	"github.com/fleetdesk/booking-intake/internal/pipeline"
	"github.com/fleetdesk/booking-intake/internal/repository"
)

// HealthFunc reports backend health; wired to the database ping in the
// daemon, nil in tests.
type HealthFunc func(ctx context.Context) error

type Server struct {
	logger       *slog.Logger
	orchestrator *pipeline.Orchestrator
	runs         repository.RunRepository // nil disables persistence
	exporter     *export.Service
	stats        *pipeline.StatsCollector
	health       HealthFunc
	http         *http.Server
}

func New(orchestrator *pipeline.Orchestrator, runs repository.RunRepository, exporter *export.Service,
	stats *pipeline.StatsCollector, health HealthFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:       logger,
		orchestrator: orchestrator,
		runs:         runs,
		exporter:     exporter,
		stats:        stats,
		health:       health,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/intake", s.handleIntake)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/export", s.handleExportRun)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server.start", "addr", addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.logger.Info("server.shutdown")
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("server.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"req_id", middleware.GetReqID(r.Context()),
		)
	})
}
