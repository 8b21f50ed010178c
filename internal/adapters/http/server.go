// Package http is the HTTP adapter of the quote service, built on Gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

// Server serves the quote API. Binding is split from serving so a caller
// can learn the real port before traffic starts.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	cfg    *config.ServerConfig
	logger *slog.Logger
	ln     net.Listener
}

// New creates a server whose engine limits request bodies to
// cfg.MaxRequestSize. Routes are added through Engine.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(middleware.BodyLimit(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		cfg:    cfg,
		logger: logger.With(slog.String("component", "http")),
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig { return s.cfg }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// BoundAddr returns the address actually listened on, or "" before Listen.
// It differs from Addr when the configured port is 0.
func (s *Server) BoundAddr() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Listen binds the configured address without serving.
func (s *Server) Listen(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	s.ln = ln

	return nil
}

// Run serves until ctx is done, then drains in-flight requests for at most
// the configured shutdown timeout. It binds first if Listen was not called.
// Run fits an errgroup member.
func (s *Server) Run(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("serving quote API",
		slog.String("addr", s.BoundAddr()),
		slog.Duration("read_timeout", s.cfg.ReadTimeout),
		slog.Duration("write_timeout", s.cfg.WriteTimeout),
	)

	served := make(chan error, 1)

	go func() { served <- s.srv.Serve(s.ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("draining HTTP requests", slog.Duration("timeout", s.cfg.ShutdownTimeout))

	if err := s.srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining http: %w", err)
	}

	<-served

	s.logger.Info("HTTP server stopped")

	return nil
}
