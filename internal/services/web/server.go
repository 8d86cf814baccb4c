package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/platform/timeouts"
	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

// Config defines the inputs for the dashboard server.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// Content seeds every new dashboard. Nil means the built-in set.
	Content *dashboard.Content
}

// Server hosts the dashboard HTTP server.
type Server struct {
	addr       string
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer builds a configured dashboard server.
func NewServer(cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	content := dashboard.DefaultContent()
	if cfg.Content != nil {
		content = *cfg.Content
	}
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(content),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		log: logging.With("web"),
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe runs the HTTP server until the context ends, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.log.Info().Str("addr", s.addr).Msg("dashboard listening")
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
