// Package server provides the HTTP front end: the embedded chat page
// and the one-turn chat endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// ErrSecureScheme is returned for https bind addresses. Only plain HTTP
// serving is supported; a secure scheme is a configuration error.
var ErrSecureScheme = errors.New("https bind addresses are not supported")

// ParseBind normalizes a bind flag into a URL. A bare host:port gets an
// http scheme prepended; https is rejected.
func ParseBind(bind string) (*url.URL, error) {
	if strings.HasPrefix(bind, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrSecureScheme, bind)
	}
	if !strings.HasPrefix(bind, "http://") {
		bind = "http://" + bind
	}

	u, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse bind address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("bind address %q has no host", bind)
	}
	return u, nil
}

// Server hosts the chat UI and endpoint over plain HTTP.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New builds the router and server around the handler. Per-request
// concurrency is whatever net/http provides; the handler and its
// adapters are shared by all in-flight requests.
func New(addr string, h *Handler, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(requestLogger(logger))

	r.Get("/", h.Home)
	r.Post("/chat", h.Chat)

	return &Server{
		srv: &http.Server{
			Addr:        addr,
			Handler:     r,
			ReadTimeout: 30 * time.Second,
			// A turn chains two redact calls, a completion, and any
			// number of reputation lookups; writes must wait for all of
			// them.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
