// Package server provides the HTTP server for the contract review API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"veritas-hq/minos/pkg/audit"
	"veritas-hq/minos/pkg/config"
	"veritas-hq/minos/pkg/server/handlers"
	"veritas-hq/minos/pkg/server/middleware"
	"veritas-hq/minos/pkg/store"
	"veritas-hq/minos/pkg/telemetry/metrics"
)

// streamPath is exempt from the request timeout middleware; the
// connection stays open for the whole review batch.
const streamPath = "/api/v1/review/stream"

// Dependencies carries everything the server needs to handle
// requests. Trail and Collector may be nil.
type Dependencies struct {
	Runner    handlers.Runner
	Store     store.Store
	Trail     *audit.Trail
	Collector *metrics.Collector
	Judges    []handlers.JudgeStatus
}

// Server is the HTTP server for the contract review API.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new review API server.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		metricsCfg:   metricsCfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting review server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("review server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	streamHandler := handlers.NewStreamReviewHandler(s.deps.Runner, nil)
	reviewHandler := handlers.NewReviewHandler(s.deps.Runner, nil)
	sessionsHandler := handlers.NewSessionsHandler(s.deps.Store, s.deps.Trail, nil)
	healthHandler := handlers.NewHealthHandler(s.deps.Judges...)

	mux.Handle("POST "+streamPath, streamHandler)
	mux.Handle("POST /api/v1/review", reviewHandler)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sessionsHandler.Get)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary", sessionsHandler.Summary)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sessionsHandler.Delete)
	mux.HandleFunc("POST /api/v1/results/{sessionId}/{ruleId}/feedback", sessionsHandler.Feedback)
	mux.Handle("GET /health", healthHandler)

	if s.metricsCfg != nil && s.metricsCfg.Enabled && s.deps.Collector != nil {
		mux.Handle("GET "+s.metricsCfg.Path, s.deps.Collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout, streamPath)(handler)
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        s.config.CORS.Enabled,
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: s.config.CORS.AllowedMethods,
		AllowedHeaders: s.config.CORS.AllowedHeaders,
	}
}
