package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mandalnilabja/inkgate/internal/config"
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *slog.Logger
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	// A request may wait for every provider in turn, so the write timeout
	// must cover the whole chain.
	writeTimeout := 30 * time.Second
	for _, p := range cfg.Providers {
		t := p.Timeout
		if t == 0 {
			t = cfg.ProviderTimeout
		}
		writeTimeout += t
	}

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		config:     cfg,
		logger:     logger,
	}
}

// Start begins listening and serving HTTP requests. It returns nil once
// Shutdown has been called.
func (s *Server) Start() error {
	s.logger.Info("inkgate server starting", "addr", "http://localhost"+s.config.ServerPort)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// WriteTimeout returns the longest time a single request may take.
func (s *Server) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
