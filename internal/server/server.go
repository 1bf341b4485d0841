// Package server provides the HTTP server for TrainIQ.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/trainiq/internal/analysis"
	"github.com/ayusman/trainiq/internal/app"
	"github.com/ayusman/trainiq/internal/server/api"
	"github.com/ayusman/trainiq/internal/store"
)

// Config holds the server configuration. Nil parts leave their routes out.
type Config struct {
	StaticDir string
	Profiles  *analysis.ProfileSet
	Store     *store.Store
	Trainer   *app.Trainer
	Search    api.ExerciseSearcher
	Logger    *slog.Logger
}

// Server is the TrainIQ HTTP API, live feed and dashboard.
type Server struct {
	config Config
	router chi.Router
	log    *slog.Logger
	start  time.Time

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a new Server with all routes configured.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Profiles == nil && config.Trainer != nil {
		config.Profiles = config.Trainer.Profiles()
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		log:    config.Logger,
		start:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/health", s.handleHealth)

	profiles := api.NewProfileHandler(s.config.Profiles)
	s.router.Mount("/api/profiles", profiles.Routes())
	s.router.Post("/api/score", profiles.Score)

	if s.config.Store != nil {
		s.router.Mount("/api/exercises", api.NewExerciseHandler(s.config.Store, s.config.Search, s.log).Routes())
		s.router.Mount("/api/sessions", api.NewSessionHandler(s.config.Store, s.log).Routes())
	}

	if t := s.config.Trainer; t != nil {
		h := api.NewTrainerHandler(t)
		s.router.Get("/api/state", h.State)
		s.router.Get("/api/stats", h.Stats)
		s.router.Post("/api/session/reset", h.Reset)
		s.router.Put("/api/session/exercise", h.SelectExercise)
		s.router.Put("/api/session/enabled", h.SetEnabled)

		s.router.Get("/ws", NewLiveHandler(t, s.log).ServeHTTP)
		s.router.Get("/stream", NewStreamHandler(t).ServeHTTP)
	}

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	})
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for requests to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
