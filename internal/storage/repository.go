package storage

import (
	"context"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// Repository defines the interface for puzzle persistence
type Repository interface {
	// Puzzles (keyed by date, format 2025-08-03)
	CreatePuzzle(ctx context.Context, p *models.Puzzle) error
	GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error)
	UpdatePuzzle(ctx context.Context, p *models.Puzzle) error
	RecordAttempt(ctx context.Context, id string, solved bool) (*models.Puzzle, error)

	// Difficulty history
	LatestDifficulty(ctx context.Context, category models.Category) (float64, bool, error)
	CreateDifficultyHistory(ctx context.Context, h *models.DifficultyHistory) error
	GetDifficultyHistory(ctx context.Context, category models.Category, date string) (*models.DifficultyHistory, error)
	ListDifficultyHistory(ctx context.Context, category models.Category, limit int) ([]*models.DifficultyHistory, error)

	// Stump tallies per (model, category)
	UpsertStumpTally(ctx context.Context, model string, category models.Category, stumped bool) error
	ListStumpTallies(ctx context.Context) ([]*models.StumpTally, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
