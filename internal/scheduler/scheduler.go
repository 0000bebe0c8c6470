// Package scheduler drives the daily puzzle cycle: generate today's puzzle
// if it is missing, and evaluate yesterday's community outcome.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
	"github.com/dailypuzzle/puzzle-engine/internal/puzzle"
)

// Scheduler handles the periodic generation and evaluation tasks
type Scheduler struct {
	manager    puzzle.Manager
	categories []models.Category
	interval   time.Duration
	now        func() time.Time
}

// NewScheduler creates a new daily cycle worker. The interval only controls
// how often the worker wakes up; both tasks are idempotent per date, so a
// short interval does no duplicate work.
func NewScheduler(manager puzzle.Manager, categories []models.Category, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if len(categories) == 0 {
		categories = []models.Category{models.CategoryMath, models.CategoryWord, models.CategoryArt}
	}

	return &Scheduler{
		manager:    manager,
		categories: categories,
		interval:   interval,
		now:        time.Now,
	}
}

// Start begins the scheduler worker in a goroutine
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// run is the main loop for the scheduler worker
func (s *Scheduler) run(ctx context.Context) {
	slog.Info("scheduler started", "interval", s.interval, "categories", s.categories)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs one pass of both daily tasks
func (s *Scheduler) cycle(ctx context.Context) {
	now := s.now().UTC()
	s.generateToday(ctx, now)
	s.evaluateYesterday(ctx, now)
}

// CategoryFor rotates through the configured categories, one per day
func (s *Scheduler) CategoryFor(date time.Time) models.Category {
	day := int(date.UTC().Unix() / 86400)
	n := len(s.categories)
	// Go's % keeps the dividend's sign; pre-1970 dates yield a negative day
	return s.categories[((day%n)+n)%n]
}

func (s *Scheduler) generateToday(ctx context.Context, now time.Time) {
	category := s.CategoryFor(now)
	date := models.DateKey(now)

	outcome, err := s.manager.GenerateDaily(ctx, now, category)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleExists) {
			slog.Debug("puzzle already generated", "date", date)
			return
		}
		slog.Error("daily generation failed", "date", date, "category", category, "error", err)
		return
	}

	slog.Info("daily puzzle generated",
		"date", date,
		"category", category,
		"status", outcome.Status,
		"score", outcome.Score,
	)
}

func (s *Scheduler) evaluateYesterday(ctx context.Context, now time.Time) {
	yesterday := now.AddDate(0, 0, -1)
	date := models.DateKey(yesterday)

	history, err := s.manager.EvaluateDaily(ctx, yesterday)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleNotFound) {
			slog.Debug("no puzzle to evaluate", "date", date)
			return
		}
		slog.Error("daily evaluation failed", "date", date, "error", err)
		return
	}

	slog.Info("daily puzzle evaluated",
		"date", date,
		"category", history.Category,
		"difficulty", history.Difficulty,
		"previous", history.PreviousDifficulty,
	)
}
