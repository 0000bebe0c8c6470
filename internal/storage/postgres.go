package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreatePuzzle creates a new puzzle record
func (r *PostgresRepository) CreatePuzzle(ctx context.Context, p *models.Puzzle) error {
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	query := `
		INSERT INTO puzzles (id, category, difficulty, generator_model, content, validator_report, created_at, is_active, total_attempts, successful_solves)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		string(p.Category),
		p.Difficulty,
		p.GeneratorModel,
		contentJSON,
		nullBytes(p.ValidatorReport),
		p.CreatedAt,
		p.IsActive,
		p.TotalAttempts,
		p.SuccessfulSolves,
	)

	if err != nil {
		return fmt.Errorf("failed to create puzzle: %w", err)
	}

	return nil
}

const puzzleColumns = `id, category, difficulty, generator_model, content, validator_report, created_at, is_active, total_attempts, successful_solves`

func scanPuzzle(row pgx.Row) (*models.Puzzle, error) {
	var p models.Puzzle
	var categoryStr string
	var contentJSON []byte
	var reportJSON []byte

	err := row.Scan(
		&p.ID,
		&categoryStr,
		&p.Difficulty,
		&p.GeneratorModel,
		&contentJSON,
		&reportJSON,
		&p.CreatedAt,
		&p.IsActive,
		&p.TotalAttempts,
		&p.SuccessfulSolves,
	)
	if err != nil {
		return nil, err
	}

	p.Category = models.Category(categoryStr)
	if err := json.Unmarshal(contentJSON, &p.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}
	p.ValidatorReport = reportJSON

	return &p, nil
}

// GetPuzzle retrieves a puzzle by its date ID. Returns (nil, nil) when no
// puzzle exists for the date.
func (r *PostgresRepository) GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	query := `SELECT ` + puzzleColumns + ` FROM puzzles WHERE id = $1`

	p, err := scanPuzzle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}

	return p, nil
}

// UpdatePuzzle updates an existing puzzle
func (r *PostgresRepository) UpdatePuzzle(ctx context.Context, p *models.Puzzle) error {
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	query := `
		UPDATE puzzles
		SET difficulty = $2, content = $3, validator_report = $4, is_active = $5, total_attempts = $6, successful_solves = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Difficulty,
		contentJSON,
		nullBytes(p.ValidatorReport),
		p.IsActive,
		p.TotalAttempts,
		p.SuccessfulSolves,
	)

	if err != nil {
		return fmt.Errorf("failed to update puzzle: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("puzzle not found: %s", p.ID)
	}

	return nil
}

// RecordAttempt atomically increments the attempt counters for a puzzle and
// returns the updated record. Returns (nil, nil) when the puzzle does not
// exist.
func (r *PostgresRepository) RecordAttempt(ctx context.Context, id string, solved bool) (*models.Puzzle, error) {
	query := `
		UPDATE puzzles
		SET total_attempts = total_attempts + 1,
		    successful_solves = successful_solves + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1
		RETURNING ` + puzzleColumns

	p, err := scanPuzzle(r.pool.QueryRow(ctx, query, id, solved))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	return p, nil
}

// LatestDifficulty returns the most recent difficulty recorded for a
// category. The bool is false when the category has no history yet.
func (r *PostgresRepository) LatestDifficulty(ctx context.Context, category models.Category) (float64, bool, error) {
	query := `
		SELECT difficulty
		FROM difficulty_history
		WHERE category = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var difficulty float64
	err := r.pool.QueryRow(ctx, query, string(category)).Scan(&difficulty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get latest difficulty: %w", err)
	}

	return difficulty, true, nil
}

// CreateDifficultyHistory records a difficulty adjustment. The
// (category, date) pair is unique; inserting a duplicate fails.
func (r *PostgresRepository) CreateDifficultyHistory(ctx context.Context, h *models.DifficultyHistory) error {
	query := `
		INSERT INTO difficulty_history (category, date, difficulty, previous_difficulty, adjustment_reason)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		string(h.Category),
		h.Date,
		h.Difficulty,
		h.PreviousDifficulty,
		h.AdjustmentReason,
	)

	if err != nil {
		return fmt.Errorf("failed to create difficulty history: %w", err)
	}

	return nil
}

// GetDifficultyHistory retrieves the adjustment for a category and date.
// Returns (nil, nil) when none exists.
func (r *PostgresRepository) GetDifficultyHistory(ctx context.Context, category models.Category, date string) (*models.DifficultyHistory, error) {
	query := `
		SELECT category, date, difficulty, previous_difficulty, adjustment_reason
		FROM difficulty_history
		WHERE category = $1 AND date = $2
	`

	var h models.DifficultyHistory
	var categoryStr string

	err := r.pool.QueryRow(ctx, query, string(category), date).Scan(
		&categoryStr,
		&h.Date,
		&h.Difficulty,
		&h.PreviousDifficulty,
		&h.AdjustmentReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get difficulty history: %w", err)
	}

	h.Category = models.Category(categoryStr)
	return &h, nil
}

// ListDifficultyHistory returns recent adjustments for a category, newest
// first.
func (r *PostgresRepository) ListDifficultyHistory(ctx context.Context, category models.Category, limit int) ([]*models.DifficultyHistory, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT category, date, difficulty, previous_difficulty, adjustment_reason
		FROM difficulty_history
		WHERE category = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list difficulty history: %w", err)
	}
	defer rows.Close()

	var history []*models.DifficultyHistory
	for rows.Next() {
		var h models.DifficultyHistory
		var categoryStr string

		if err := rows.Scan(&categoryStr, &h.Date, &h.Difficulty, &h.PreviousDifficulty, &h.AdjustmentReason); err != nil {
			return nil, fmt.Errorf("failed to scan difficulty history: %w", err)
		}
		h.Category = models.Category(categoryStr)
		history = append(history, &h)
	}

	return history, rows.Err()
}

// UpsertStumpTally increments a generator model's counters for a category.
// Every call counts one generated puzzle; stumped additionally counts one
// successful stump.
func (r *PostgresRepository) UpsertStumpTally(ctx context.Context, model string, category models.Category, stumped bool) error {
	query := `
		INSERT INTO stump_tallies (model, category, total_generated, successful_stumps, last_updated)
		VALUES ($1, $2, 1, CASE WHEN $3 THEN 1 ELSE 0 END, NOW())
		ON CONFLICT (model, category) DO UPDATE
		SET total_generated = stump_tallies.total_generated + 1,
		    successful_stumps = stump_tallies.successful_stumps + CASE WHEN $3 THEN 1 ELSE 0 END,
		    last_updated = NOW()
	`

	_, err := r.pool.Exec(ctx, query, model, string(category), stumped)
	if err != nil {
		return fmt.Errorf("failed to upsert stump tally: %w", err)
	}

	return nil
}

// ListStumpTallies returns all tallies ordered by stump count
func (r *PostgresRepository) ListStumpTallies(ctx context.Context) ([]*models.StumpTally, error) {
	query := `
		SELECT model, category, total_generated, successful_stumps, last_updated
		FROM stump_tallies
		ORDER BY successful_stumps DESC, model ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stump tallies: %w", err)
	}
	defer rows.Close()

	var tallies []*models.StumpTally
	for rows.Next() {
		var t models.StumpTally
		var categoryStr string

		if err := rows.Scan(&t.Model, &categoryStr, &t.TotalGenerated, &t.SuccessfulStumps, &t.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan stump tally: %w", err)
		}
		t.Category = models.Category(categoryStr)
		tallies = append(tallies, &t)
	}

	return tallies, rows.Err()
}

// GetClientByApiKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	_, err := r.pool.Exec(ctx, query, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

func nullBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
