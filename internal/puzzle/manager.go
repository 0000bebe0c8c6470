package puzzle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/fallback"
	"github.com/dailypuzzle/puzzle-engine/internal/generator"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
	"github.com/dailypuzzle/puzzle-engine/internal/prompt"
	"github.com/dailypuzzle/puzzle-engine/internal/storage"
	"github.com/dailypuzzle/puzzle-engine/internal/validation"
)

// Common errors
var (
	ErrPuzzleNotFound = errors.New("puzzle not found")
	ErrPuzzleExists   = errors.New("puzzle already exists for date")
	ErrPuzzleRejected = errors.New("puzzle rejected by validation")
	ErrNoFallback     = errors.New("no fallback puzzle available")
	ErrInvalidInput   = errors.New("invalid input")
)

// DefaultDifficulty seeds a category with no recorded history
const DefaultDifficulty = 0.5

// rejectThreshold is the minimum validation score for a generated puzzle to
// be stored at all. Between this and the validity threshold the puzzle is
// accepted with warnings attached.
const rejectThreshold = 0.5

// FallbackModel is the generator_model recorded for fallback puzzles
const FallbackModel = "fallback"

// Cache is the optional read-through cache in front of the repository
type Cache interface {
	GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error)
	SetPuzzle(ctx context.Context, p *models.Puzzle) error
	Invalidate(ctx context.Context, id string) error
}

// Manager is the orchestration entry point used by the API and scheduler
type Manager interface {
	GenerateDaily(ctx context.Context, date time.Time, category models.Category) (*Outcome, error)
	EvaluateDaily(ctx context.Context, date time.Time) (*models.DifficultyHistory, error)
	Get(ctx context.Context, id string) (*models.Puzzle, error)
	RecordAttempt(ctx context.Context, id string, solved bool) (*models.Puzzle, error)
	StumpTallies(ctx context.Context) ([]*models.StumpTally, error)
	DifficultyHistory(ctx context.Context, category models.Category, limit int) ([]*models.DifficultyHistory, error)
	Ping(ctx context.Context) error
}

// PipelineManager implements Manager with the full generation pipeline
type PipelineManager struct {
	repo       storage.Repository
	registry   *generator.Registry
	calibrator *difficulty.Calibrator
	prompts    *prompt.Builder
	validator  *validation.Validator
	fallbacks  *fallback.Library
	cache      Cache     // optional
	events     EventSink // optional
	logger     *slog.Logger
}

// NewPipelineManager creates a manager. Cache and events may be nil.
func NewPipelineManager(
	repo storage.Repository,
	registry *generator.Registry,
	calibrator *difficulty.Calibrator,
	prompts *prompt.Builder,
	validator *validation.Validator,
	fallbacks *fallback.Library,
	cache Cache,
	events EventSink,
	logger *slog.Logger,
) *PipelineManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineManager{
		repo:       repo,
		registry:   registry,
		calibrator: calibrator,
		prompts:    prompts,
		validator:  validator,
		fallbacks:  fallbacks,
		cache:      cache,
		events:     events,
		logger:     logger,
	}
}

func (m *PipelineManager) publish(runID, date string, category models.Category, state State, message string) {
	if m.events == nil {
		return
	}
	m.events.Publish(Event{
		RunID:     runID,
		Date:      date,
		Category:  category,
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// GenerateDaily runs the full pipeline for a date and category. It is
// idempotent per date: a second call returns ErrPuzzleExists. Generation
// failures fall back to the pre-authored library; a validation score below
// 0.5 is an explicit rejection, returned as ErrPuzzleRejected alongside an
// Outcome carrying the validation issues.
func (m *PipelineManager) GenerateDaily(ctx context.Context, date time.Time, category models.Category) (*Outcome, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	id := models.DateKey(date)
	runID := uuid.New().String()

	existing, err := m.repo.GetPuzzle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing puzzle: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleExists, id)
	}

	logger := m.logger.With("run_id", runID, "date", id, "category", category)

	// CALIBRATING
	m.publish(runID, id, category, StateCalibrating, "")
	target, found, err := m.repo.LatestDifficulty(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load difficulty: %w", err)
	}
	if !found {
		target = DefaultDifficulty
	}

	var factors difficulty.Factors
	if category == models.CategoryArt {
		factors, err = m.calibrator.GenerateFactors(target, nil)
		if err != nil {
			return nil, err
		}
		if !m.calibrator.ValidateMatch(factors, target, difficulty.DefaultTolerance) {
			logger.Warn("band composite drifts from target",
				"band", m.calibrator.BandName(target),
				"composite", factors.Composite(),
				"target", target)
		}
	}

	// PROMPTING
	m.publish(runID, id, category, StatePrompting, "")
	var p string
	if category == models.CategoryArt {
		p = m.prompts.Build(factors, nil)
	} else {
		p = m.prompts.BuildBasic(category, target)
	}

	// GENERATING
	m.publish(runID, id, category, StateGenerating, "")
	content, model, genErr := m.generate(ctx, id, category, p)
	if genErr != nil {
		logger.Warn("generation failed, using fallback", "error", genErr)
		return m.fallbackOutcome(ctx, runID, id, category, target)
	}

	// VALIDATING
	m.publish(runID, id, category, StateValidating, "")
	var result validation.Result
	if category == models.CategoryArt {
		result = m.validator.Validate(content, factors, target)
	} else {
		result = m.validator.ValidateBasic(content, target)
	}

	if result.OverallScore < rejectThreshold {
		m.publish(runID, id, category, StateRejected, fmt.Sprintf("score %.3f", result.OverallScore))
		logger.Warn("puzzle rejected", "score", result.OverallScore, "issues", len(result.Issues))
		return &Outcome{
			RunID:  runID,
			Status: StatusRejected,
			Issues: result.Issues,
			Score:  result.OverallScore,
		}, fmt.Errorf("%w: score %.3f", ErrPuzzleRejected, result.OverallScore)
	}

	report, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation result: %w", err)
	}

	record := &models.Puzzle{
		ID:              id,
		Category:        category,
		Difficulty:      target,
		GeneratorModel:  model,
		Content:         content,
		ValidatorReport: report,
		CreatedAt:       time.Now().UTC(),
		IsActive:        true,
	}
	if err := m.repo.CreatePuzzle(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store puzzle: %w", err)
	}
	m.cachePuzzle(ctx, record)

	status := StatusAcceptedWithWarnings
	if result.IsValid {
		status = StatusAccepted
	}
	m.publish(runID, id, category, StateAccepted, fmt.Sprintf("score %.3f", result.OverallScore))
	logger.Info("puzzle accepted", "status", status, "score", result.OverallScore, "model", model)

	return &Outcome{
		RunID:  runID,
		Status: status,
		Puzzle: record,
		Issues: result.Issues,
		Score:  result.OverallScore,
	}, nil
}

// generate resolves the day's generator and parses its completion
func (m *PipelineManager) generate(ctx context.Context, id string, category models.Category, p string) (models.PuzzleContent, string, error) {
	gen, err := m.registry.ForDate(id, category)
	if err != nil {
		return models.PuzzleContent{}, "", err
	}

	raw, err := gen.Generate(ctx, p)
	if err != nil {
		return models.PuzzleContent{}, gen.Name(), err
	}

	content, err := generator.ParseCompletion(raw)
	if err != nil {
		return models.PuzzleContent{}, gen.Name(), err
	}

	return content, gen.Name(), nil
}

// fallbackOutcome persists the nearest pre-authored puzzle for the target
// difficulty. The end consumer still gets a puzzle; only the operator feed
// sees that generation failed.
func (m *PipelineManager) fallbackOutcome(ctx context.Context, runID, id string, category models.Category, target float64) (*Outcome, error) {
	entry, ok := m.fallbacks.Nearest(category, target)
	if !ok {
		return nil, fmt.Errorf("%w: category %s", ErrNoFallback, category)
	}

	record := &models.Puzzle{
		ID:             id,
		Category:       category,
		Difficulty:     entry.Difficulty,
		GeneratorModel: FallbackModel,
		Content:        entry.Content(),
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if err := m.repo.CreatePuzzle(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store fallback puzzle: %w", err)
	}
	m.cachePuzzle(ctx, record)

	m.publish(runID, id, category, StateFallback, "")
	return &Outcome{
		RunID:  runID,
		Status: StatusFallback,
		Puzzle: record,
	}, nil
}

func (m *PipelineManager) cachePuzzle(ctx context.Context, p *models.Puzzle) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetPuzzle(ctx, p); err != nil {
		m.logger.Warn("failed to cache puzzle", "id", p.ID, "error", err)
	}
}

// EvaluateDaily runs the nightly difficulty feedback loop for the puzzle on
// the given date. The adjusted difficulty is recorded under the following
// day, so the pair (category, next date) makes re-evaluation idempotent:
// a second call returns the existing record.
func (m *PipelineManager) EvaluateDaily(ctx context.Context, date time.Time) (*models.DifficultyHistory, error) {
	id := models.DateKey(date)

	p, err := m.repo.GetPuzzle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzle: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
	}

	nextDate := models.DateKey(date.AddDate(0, 0, 1))
	if existing, err := m.repo.GetDifficultyHistory(ctx, p.Category, nextDate); err != nil {
		return nil, fmt.Errorf("failed to check difficulty history: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	solved := p.CommunitySolved()
	previous := p.Difficulty

	var next float64
	var reason string
	if p.Category == models.CategoryArt {
		next, err = m.adjustArtDifficulty(previous, solved)
		if err != nil {
			return nil, err
		}
		if solved {
			reason = "Community solved - factors scaled up"
		} else {
			reason = "Community stumped - factors scaled down"
		}
	} else {
		if solved {
			next = previous + 0.05
			reason = "Community solved - increased difficulty"
		} else {
			next = previous - 0.05
			reason = "Community stumped - decreased difficulty"
		}
	}
	next = clamp01(next)

	history := &models.DifficultyHistory{
		Category:           p.Category,
		Date:               nextDate,
		Difficulty:         next,
		PreviousDifficulty: previous,
		AdjustmentReason:   reason,
	}
	// The history row is the idempotency marker, so it commits last: a
	// failed tally update leaves no history row and the evaluation can be
	// retried in full.
	if err := m.repo.UpsertStumpTally(ctx, p.GeneratorModel, p.Category, !solved); err != nil {
		return nil, fmt.Errorf("failed to update stump tally: %w", err)
	}

	if err := m.repo.CreateDifficultyHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to record difficulty history: %w", err)
	}

	m.logger.Info("puzzle evaluated",
		"date", id,
		"category", p.Category,
		"solved", solved,
		"previous", previous,
		"next", next)

	return history, nil
}

// adjustArtDifficulty maps the boolean community outcome to a solve-rate
// proxy, runs it through the factor feedback formula, and caps the movement
// at 0.1 per evaluation.
func (m *PipelineManager) adjustArtDifficulty(previous float64, solved bool) (float64, error) {
	factors, err := m.calibrator.GenerateFactors(previous, nil)
	if err != nil {
		return 0, err
	}

	proxy := 0.25
	if solved {
		proxy = 0.75
	}

	next := m.calibrator.AdjustForPerformance(factors, proxy).Composite()
	if next > previous+0.1 {
		next = previous + 0.1
	}
	if next < previous-0.1 {
		next = previous - 0.1
	}
	return next, nil
}

// Get returns the puzzle for a date key, read through the cache
func (m *PipelineManager) Get(ctx context.Context, id string) (*models.Puzzle, error) {
	if m.cache != nil {
		if cached, err := m.cache.GetPuzzle(ctx, id); err != nil {
			m.logger.Warn("cache read failed", "id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := m.repo.GetPuzzle(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
	}

	m.cachePuzzle(ctx, p)
	return p, nil
}

// RecordAttempt counts a player attempt and invalidates the cached record
func (m *PipelineManager) RecordAttempt(ctx context.Context, id string, solved bool) (*models.Puzzle, error) {
	p, err := m.repo.RecordAttempt(ctx, id, solved)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
	}

	if m.cache != nil {
		if err := m.cache.Invalidate(ctx, id); err != nil {
			m.logger.Warn("cache invalidation failed", "id", id, "error", err)
		}
	}

	return p, nil
}

// StumpTallies returns the per-model stump statistics
func (m *PipelineManager) StumpTallies(ctx context.Context) ([]*models.StumpTally, error) {
	return m.repo.ListStumpTallies(ctx)
}

// DifficultyHistory returns recent difficulty adjustments for a category
func (m *PipelineManager) DifficultyHistory(ctx context.Context, category models.Category, limit int) ([]*models.DifficultyHistory, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	return m.repo.ListDifficultyHistory(ctx, category, limit)
}

// Ping checks repository health
func (m *PipelineManager) Ping(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
