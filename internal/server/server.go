// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the document store and the session
// backend from config, builds the services and handlers on top of them, and
// mounts everything on one chi router.
//
//	config → repository.Store ─┬→ AuthService → AuthHandler
//	       → session.Store ────┘→ TaskService → TaskHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/kanban-board/internal/auth"
	"github.com/sakif/kanban-board/internal/config"
	"github.com/sakif/kanban-board/internal/handler"
	"github.com/sakif/kanban-board/internal/middleware"
	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/kanban-board/internal/repository/sqlite"
	"github.com/sakif/kanban-board/internal/service"
	"github.com/sakif/kanban-board/internal/session"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and every resource that must be released on
// shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger

	store    repository.Store
	sessions session.Store
	closers  []func() error
}

// New opens the store and session backend named in cfg and wires the routes.
// Anything opened before a failure is closed again.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions, closeSessions, err := session.New(session.Options{
		Backend: cfg.Session.Backend,
		TTL:     cfg.Session.TTL,
		Redis: session.RedisOptions{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		},
		JWTSecret: cfg.Session.JWTSecret,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	passwords, err := auth.NewPasswordService(cfg.Auth.PasswordHash, cfg.Auth.BcryptCost)
	if err != nil {
		closeSessions()
		store.Close()
		return nil, fmt.Errorf("configuring password hashing: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		sessions: sessions,
		closers:  []func() error{closeSessions, store.Close},
	}

	if err := s.setupRoutes(passwords); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// OpenStore opens the document store selected by cfg.Store.Backend.
func OpenStore(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Store.Backend {
	case "", "json":
		store, err := jsonfile.New(cfg.Store.DataFile, logger)
		if err != nil {
			return nil, fmt.Errorf("opening json store: %w", err)
		}
		return store, nil
	case "sqlite":
		db, err := sqliteRepo.New(cfg.Store.DBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// setupRoutes configures middleware and routes.
//
//	GET  /healthz                    liveness
//	POST /api/auth/signup, /login    rate limited per client IP
//	GET  /auth/github/login          GitHub OAuth (404 unless configured)
//	GET  /auth/github/callback
//	     /api/...                    bearer token required
//	     anything else               browser app (SPA fallback)
//
// Middleware order: RequestID, RealIP (only with TrustProxy), Logger,
// Recoverer. Recoverer sits inside Logger so a recovered panic is still
// logged as a 500. The rate limiter keys on RemoteAddr, so forwarding
// headers only count when a trusted proxy sets them.
func (s *Server) setupRoutes(passwords *auth.PasswordService) error {
	s.router.Use(chimiddleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(chimiddleware.RealIP)
	}
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// An untyped nil keeps the handler's "GitHub disabled" check working.
	var github handler.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHub.ClientID, s.config.GitHub.ClientSecret, s.config.GitHubCallback())
	}

	authService := service.NewAuthService(s.store, s.sessions, passwords, s.logger)
	taskService := service.NewTaskService(s.store, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, s.config.MaxBodyBytes, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.config.MaxBodyBytes, s.logger)

	static, err := handler.NewStaticHandler(s.config.WebRoot, s.logger)
	if err != nil {
		return err
	}

	s.router.Get("/healthz", handler.HandleHealth)

	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.config.RateLimitEnabled() {
				limiter := middleware.NewRateLimiter(s.config.Auth.RateLimit, s.config.Auth.RateBurst, s.logger)
				r.Use(limiter.Handler)
			}
			r.Post("/auth/signup", authHandler.HandleSignup)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.sessions, s.logger))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			r.Get("/users", authHandler.HandleUsers)

			r.Get("/tasks", taskHandler.HandleList)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Put("/tasks/{id}", taskHandler.HandleUpdate)
			r.Post("/tasks/{id}/comments", taskHandler.HandleAddComment)
			r.Get("/board", taskHandler.HandleBoard)
		})

		r.NotFound(handler.APINotFound(s.logger))
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			handler.APINotFound(s.logger)(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		static.ServeHTTP(w, r)
	})

	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the session backend and the store.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to 30 seconds and closes the store and session backend.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.config.Store.Backend),
			slog.String("sessions", s.config.Session.Backend),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
