package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"moviely/internal/logging"
	"moviely/internal/services"
)

const shutdownTimeout = 5 * time.Second

// Server owns the HTTP listener for the API.
type Server struct {
	bind   string
	logger *slog.Logger
	server *http.Server

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
	serveErr error
}

// NewServer prepares a server bound to bind. Nothing listens until Start.
func NewServer(bind string, cfg ServerConfig) (*Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "server bind address is empty", nil)
	}
	if cfg.Editor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "editor is required", nil)
	}
	logger := logging.NewComponentLogger(cfg.Logger, "api")
	cfg.Logger = logger
	return &Server{
		bind:   bind,
		logger: logger,
		server: &http.Server{
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Start listens and serves in the background. The server shuts down when
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "api", "listen", fmt.Sprintf("listen on %s", s.bind), err)
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.listener = listener
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Shutdown()
		case <-done:
		}
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "server_started"),
	)
	return nil
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	s.logger.Info("api server stopped", logging.String(logging.FieldEventType, "server_stopped"))
	return err
}

// Addr returns the listening address, or the configured bind before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}
