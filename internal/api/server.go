package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dailypuzzle/puzzle-engine/internal/config"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
	"github.com/dailypuzzle/puzzle-engine/internal/puzzle"
	"github.com/dailypuzzle/puzzle-engine/internal/storage"
)

// CategoryRotation resolves which category a given date belongs to
type CategoryRotation interface {
	CategoryFor(date time.Time) models.Category
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	manager        puzzle.Manager
	rotation       CategoryRotation
	hub            *EventHub
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server. The hub may be nil when the operator
// event feed is disabled.
func NewServer(
	cfg config.ServerConfig,
	manager puzzle.Manager,
	rotation CategoryRotation,
	hub *EventHub,
	repo storage.Repository,
) *Server {
	s := &Server{
		config:         cfg,
		manager:        manager,
		rotation:       rotation,
		hub:            hub,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		// Puzzles
		r.Route("/puzzles", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("puzzles:read")).Get("/today", s.handleGetToday)
			r.With(s.authMiddleware.RequirePermission("puzzles:read")).Get("/{date}", s.handleGetPuzzle)
			r.With(s.authMiddleware.RequirePermission("puzzles:write")).Post("/{date}/attempts", s.handleRecordAttempt)
		})

		// Community statistics
		r.Route("/stats", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("puzzles:read")).Get("/stumps", s.handleStumpStats)
			r.With(s.authMiddleware.RequirePermission("puzzles:read")).Get("/difficulty/{category}", s.handleDifficultyHistory)
		})

		// Admin operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware.RequirePermission("admin"))
			r.Post("/generate", s.handleTriggerGenerate)
			r.Post("/evaluate", s.handleTriggerEvaluate)
			r.Get("/events", s.handleEventsWS)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
