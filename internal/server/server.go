// Package server is the composition root: it wires the session store, the
// OAuth provider, the GitHub client, and the generation pipeline into a chi
// router, and owns server lifecycle including graceful shutdown.
//
// WHY SEPARATE FROM main.go?
// Keeping the wiring here means main.go only reads configuration and builds
// the optional AI backend; everything else — which store backs sessions,
// which middleware runs where, which handler answers which route — is
// decided in one place and can be exercised without running main.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/readmegen/internal/auth"
	"github.com/sakif/readmegen/internal/config"
	"github.com/sakif/readmegen/internal/github"
	"github.com/sakif/readmegen/internal/handler"
	"github.com/sakif/readmegen/internal/middleware"
	"github.com/sakif/readmegen/internal/service"
	"github.com/sakif/readmegen/internal/session"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  session.Store
}

// New assembles the full dependency chain. llm may be nil, in which case
// every generated README comes from the deterministic fallback.
func New(cfg config.Config, logger *slog.Logger, llm service.LLM) (*Server, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes(llm)
	return s, nil
}

// newStore picks the session backend once, from configuration. Memory is
// the default; sqlite survives restarts at the cost of a data directory.
func newStore(cfg config.Config) (session.Store, error) {
	switch cfg.SessionBackend {
	case "sqlite":
		if dir := filepath.Dir(cfg.SessionDBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating session db directory: %w", err)
			}
		}
		return session.NewSQLiteStore(cfg.SessionDBPath)
	case "", "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// setupRoutes configures middleware and binds handlers to routes.
//
// MIDDLEWARE ORDER MATTERS:
// RequestID and RealIP run first so the logger can use them; Recoverer
// turns panics into 500s; the session middleware runs only on routes that
// need a session, so health probes never allocate one.
func (s *Server) setupRoutes(llm service.LLM) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	provider := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	flow := service.NewAuthFlow(provider, s.store, s.logger)
	aggregator := service.NewAggregator(github.NewClient(), s.logger)
	generator := service.NewGenerator(llm, s.logger)

	authHandler := handler.NewAuthHandler(flow, s.config.FrontendURL, s.logger)
	genHandler := handler.NewGenerateHandler(aggregator, generator, s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.store, s.config.SessionTTL, s.logger))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/github", authHandler.HandleLogin)
			r.Get("/github/callback", authHandler.HandleCallback)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/status", authHandler.HandleStatus)
		})

		r.Route("/api", func(r chi.Router) {
			r.Post("/generate-readme", genHandler.HandleGenerateReadme)
			r.Get("/repositories", genHandler.HandleListRepositories)
		})
	})
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the session store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI generation can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("session_backend", s.config.SessionBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
