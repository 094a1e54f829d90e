// Package server wires handlers, middleware and routes into the loopback
// HTTP transport, and runs it until its context is cancelled.
//
// ROUTES:
//
//	GET    /healthz                    liveness, no auth
//	POST   /invoke/{command}           command bridge for the UI shell
//	GET    /api/snippets               list, or search with ?q=
//	POST   /api/snippets               create
//	PUT    /api/snippets/{id}          update
//	DELETE /api/snippets/{id}          delete
//	POST   /api/snippets/{id}/favorite toggle favorite
//
// /invoke and /api sit behind the bearer token middleware when a token
// service is configured.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippet-manager/internal/auth"
	"github.com/sakif/snippet-manager/internal/handler"
	"github.com/sakif/snippet-manager/internal/middleware"
)

// ShutdownTimeout is how long in-flight requests get to finish once the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// Config holds what the server needs. It does not own the store; the
// caller closes it after Run returns.
type Config struct {
	Addr     string
	Invoker  handler.Invoker
	Snippets handler.SnippetService
	// Tokens enables bearer auth on /invoke and /api. Nil disables it.
	Tokens *auth.TokenService
}

// Server is the HTTP transport.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New builds the router. It does not listen.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.Invoker == nil || cfg.Snippets == nil {
		return nil, errors.New("server: invoker and snippet service are required")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Middleware order: RequestID must run before Logger so the id is
// available when the line is written. Recoverer sits innermost so a panic
// is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	invokeHandler := handler.NewInvokeHandler(s.config.Invoker, s.logger)
	snippetHandler := handler.NewSnippetHandler(s.config.Snippets, s.logger)

	s.router.Group(func(r chi.Router) {
		if s.config.Tokens != nil {
			r.Use(auth.RequireToken(s.config.Tokens))
		}

		r.Post("/invoke/{command}", invokeHandler.HandleInvoke)

		r.Route("/api/snippets", func(r chi.Router) {
			r.Get("/", snippetHandler.HandleList)
			r.Post("/", snippetHandler.HandleCreate)
			r.Put("/{id}", snippetHandler.HandleUpdate)
			r.Delete("/{id}", snippetHandler.HandleDelete)
			r.Post("/{id}/favorite", snippetHandler.HandleToggleFavorite)
		})
	})
}

// Run listens on cfg.Addr and serves until ctx is cancelled, then drains
// for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.Bool("auth", s.config.Tokens != nil),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested", slog.String("reason", context.Cause(ctx).Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
