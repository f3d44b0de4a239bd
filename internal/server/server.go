// Package server wires the application together: database, services,
// handlers, middleware, and routes, plus the HTTP lifecycle. It is the
// composition root — every dependency is assembled here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/idealab/internal/auth"
	"github.com/sakif/idealab/internal/config"
	"github.com/sakif/idealab/internal/handler"
	"github.com/sakif/idealab/internal/middleware"
	sqliteRepo "github.com/sakif/idealab/internal/repository/sqlite"
	"github.com/sakif/idealab/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
// database → repositories → services → handlers → routes.
// Each layer receives only the interfaces it needs; handlers never touch
// the database and services never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// providers builds the OAuth registry from configuration. Only providers
// with both credentials set are registered; Registry.Add skips nil, so
// each line stays a one-liner.
func (s *Server) providers() auth.Registry {
	callback := func(name string) string {
		return s.config.BaseURL + s.config.PathPrefix + "/login/" + name + "/authorize"
	}

	reg := auth.Registry{}
	if c := s.config.GitHub; c.Enabled() {
		reg.Add(auth.NewGitHubProvider(c.ClientID, c.ClientSecret, callback("github")))
	}
	if c := s.config.Google; c.Enabled() {
		reg.Add(auth.NewGoogleProvider(c.ClientID, c.ClientSecret, callback("google")))
	}
	if c := s.config.Facebook; c.Enabled() {
		reg.Add(auth.NewFacebookProvider(c.ClientID, c.ClientSecret, callback("facebook")))
	}

	for name := range reg {
		s.logger.Info("OAuth provider enabled", slog.String("provider", name))
	}
	if len(reg) == 0 {
		s.logger.Warn("no OAuth providers configured; login is unavailable")
	}

	return reg
}

// setupRoutes configures middleware, builds every service and handler,
// and mounts the route tree.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.NotFound(handler.NotFound)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	users := sqliteRepo.NewUsers(s.db)
	ideaStore := sqliteRepo.NewIdeas(s.db)
	improvementStore := sqliteRepo.NewImprovements(s.db)
	voteStore := sqliteRepo.NewVotes(s.db)

	identity := service.NewIdentity(users, tokens, s.config.AdminContacts, s.logger)
	votes := service.NewVoteCounter(voteStore, ideaStore, s.logger)
	ideas := service.NewIdeas(ideaStore, votes, s.logger)
	improvements := service.NewImprovements(improvementStore, s.logger)

	authHandler := handler.NewAuthHandler(s.providers(), identity, s.config.NextFallback, s.logger)
	ideaHandler := handler.NewIdeaHandler(ideas, votes, s.logger)
	improvementHandler := handler.NewRecordHandler(improvements, s.logger)

	optional := auth.OptionalAuth(tokens)
	required := auth.RequireAuth(tokens)

	mount := func(r chi.Router) {
		// Public reads and the login flow. OptionalAuth so logged-in
		// users see their own unpublished records.
		r.Group(func(r chi.Router) {
			r.Use(optional)

			r.Get("/login/{provider}", authHandler.HandleLogin)
			r.Get("/login/{provider}/authorize", authHandler.HandleCallback)
			r.Get("/logout", authHandler.HandleLogout)

			r.Get("/ideas", ideaHandler.HandleList)
			r.Get("/ideas/{id}", ideaHandler.HandleGet)
			r.Get("/improvements", improvementHandler.HandleList)
			r.Get("/improvements/{id}", improvementHandler.HandleGet)
		})

		// Everything that writes, plus /me, needs a session.
		r.Group(func(r chi.Router) {
			r.Use(required)

			r.Get("/me", authHandler.HandleMe)

			r.Post("/ideas", ideaHandler.HandleCreate)
			r.Put("/ideas/{id}", ideaHandler.HandleUpdate)
			r.Delete("/ideas/{id}", ideaHandler.HandleDelete)
			r.Put("/love/idea/{id}", ideaHandler.HandleLove)

			r.Post("/improvements", improvementHandler.HandleCreate)
			r.Put("/improvements/{id}", improvementHandler.HandleUpdate)
			r.Delete("/improvements/{id}", improvementHandler.HandleDelete)
		})
	}

	if prefix := strings.TrimSuffix(s.config.PathPrefix, "/"); prefix != "" {
		s.router.Route(prefix, mount)
	} else {
		mount(s.router)
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// budget), close the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("baseURL", s.config.BaseURL),
			slog.String("database", s.config.DBPath),
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

// Router exposes the assembled router, so tests can drive the full stack
// with httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}
