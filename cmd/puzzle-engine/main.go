package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dailypuzzle/puzzle-engine/internal/api"
	"github.com/dailypuzzle/puzzle-engine/internal/cache"
	"github.com/dailypuzzle/puzzle-engine/internal/config"
	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/fallback"
	"github.com/dailypuzzle/puzzle-engine/internal/generator"
	"github.com/dailypuzzle/puzzle-engine/internal/prompt"
	"github.com/dailypuzzle/puzzle-engine/internal/puzzle"
	"github.com/dailypuzzle/puzzle-engine/internal/scheduler"
	"github.com/dailypuzzle/puzzle-engine/internal/storage"
	"github.com/dailypuzzle/puzzle-engine/internal/validation"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting puzzle-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database", cfg.Database.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize repository
	repo, err := newRepository(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("database connected successfully")

	// Initialize redis puzzle cache (optional)
	var puzzleCache puzzle.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewPuzzleCache(cfg.Redis.Address, cfg.Redis.Password)
		if err != nil {
			slog.Warn("redis unavailable, running without cache", "error", err)
		} else {
			defer rc.Close()
			puzzleCache = rc
		}
	}

	// Register generation backends
	registry := generator.NewRegistry()
	claude := generator.NewClaude(generator.ClaudeConfig{
		APIKey:    cfg.Anthropic.APIKey,
		BaseURL:   cfg.Anthropic.BaseURL,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Timeout:   cfg.Anthropic.Timeout,
	}, logger)
	registry.Register(claude)
	if claude.MockMode() {
		slog.Warn("no plausible API key configured, claude generator runs in mock mode")
	}

	// Load fallback puzzle library
	fallbacks := fallback.NewLibrary()
	if err := fallbacks.LoadFromDir(cfg.Fallbacks.Dir); err != nil {
		slog.Warn("failed to load fallback puzzles from dir", "dir", cfg.Fallbacks.Dir, "error", err)
	}

	// Event hub for the operator websocket feed
	hub := api.NewEventHub()

	// Initialize the generation pipeline
	manager := puzzle.NewPipelineManager(
		repo,
		registry,
		difficulty.NewCalibrator(),
		prompt.NewBuilder(),
		validation.NewValidator(logger),
		fallbacks,
		puzzleCache,
		hub,
		logger,
	)

	// Initialize daily cycle worker
	worker := scheduler.NewScheduler(manager, cfg.Scheduler.Categories, cfg.Scheduler.Interval)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start daily cycle worker
	worker.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, manager, worker, hub, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("puzzle-engine stopped")
}

// newRepository opens the configured database backend, running migrations
// first for postgres. The sqlite backend creates its schema on open.
func newRepository(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	switch cfg.Driver {
	case "sqlite":
		return storage.NewSqliteRepository(cfg.DSN)
	default:
		slog.Info("running database migrations", "dir", cfg.MigrationsDir)
		if err := storage.MigrateFromDSN(ctx, cfg.DSN, cfg.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return storage.NewPostgresRepository(ctx, storage.PostgresConfig{DSN: cfg.DSN})
	}
}
