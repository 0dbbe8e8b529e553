// Package server runs the relay's HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/auth-relay/internal/auth"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/logger"
	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is used when the configuration leaves it unset
	defaultShutdownTimeout = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
)

// Server owns the HTTP server serving the relay routes.
type Server struct {
	config   *config.Config
	http     *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a server for the relay service. It does not listen until Start.
func NewServer(cfg *config.Config, service *auth.Service) *Server {
	return &Server{
		config: cfg,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           service.Handler(),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		errChan: make(chan error, 1),
	}
}

// Start binds the listen address and serves in the background.
// A bind failure is returned; later serve errors are reported on Errors.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.listener = listener

	go func() {
		logger.Info("Starting server",
			zap.String("address", listener.Addr().String()),
			zap.String("environment", s.config.Server.Environment),
		)

		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	return nil
}

// Stop drains in-flight requests, bounded by the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Errors reports a failure of the serving goroutine.
func (s *Server) Errors() <-chan error {
	return s.errChan
}
