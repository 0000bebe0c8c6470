package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// SqliteRepository implements Repository over a local SQLite file. Intended
// for development and tests; production runs on Postgres.
type SqliteRepository struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS puzzles (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	difficulty REAL NOT NULL,
	generator_model TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	validator_report TEXT,
	created_at TIMESTAMP NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	total_attempts INTEGER NOT NULL DEFAULT 0,
	successful_solves INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS difficulty_history (
	category TEXT NOT NULL,
	date TEXT NOT NULL,
	difficulty REAL NOT NULL,
	previous_difficulty REAL NOT NULL,
	adjustment_reason TEXT NOT NULL DEFAULT '',
	UNIQUE (category, date)
);

CREATE TABLE IF NOT EXISTS stump_tallies (
	model TEXT NOT NULL,
	category TEXT NOT NULL,
	total_generated INTEGER NOT NULL DEFAULT 0,
	successful_stumps INTEGER NOT NULL DEFAULT 0,
	last_updated TIMESTAMP NOT NULL,
	UNIQUE (model, category)
);

CREATE TABLE IF NOT EXISTS api_clients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	api_key TEXT NOT NULL UNIQUE,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_used_at TIMESTAMP,
	permissions TEXT NOT NULL DEFAULT '[]',
	metadata TEXT
);
`

// NewSqliteRepository opens (and initializes) a SQLite database at path.
// Use ":memory:" for an ephemeral store.
func NewSqliteRepository(path string) (*SqliteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The driver is not safe for concurrent writers on one connection pool
	// with multiple connections to the same file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SqliteRepository{db: db}, nil
}

// Ping checks database connectivity
func (r *SqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database
func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

// CreatePuzzle creates a new puzzle record
func (r *SqliteRepository) CreatePuzzle(ctx context.Context, p *models.Puzzle) error {
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO puzzles (id, category, difficulty, generator_model, content, validator_report, created_at, is_active, total_attempts, successful_solves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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

func (r *SqliteRepository) scanPuzzleRow(row *sql.Row) (*models.Puzzle, error) {
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

// GetPuzzle retrieves a puzzle by date ID, (nil, nil) when absent
func (r *SqliteRepository) GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`, id)

	p, err := r.scanPuzzleRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}
	return p, nil
}

// UpdatePuzzle updates an existing puzzle
func (r *SqliteRepository) UpdatePuzzle(ctx context.Context, p *models.Puzzle) error {
	contentJSON, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE puzzles
		SET difficulty = ?, content = ?, validator_report = ?, is_active = ?, total_attempts = ?, successful_solves = ?
		WHERE id = ?`,
		p.Difficulty,
		contentJSON,
		nullBytes(p.ValidatorReport),
		p.IsActive,
		p.TotalAttempts,
		p.SuccessfulSolves,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update puzzle: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("puzzle not found: %s", p.ID)
	}

	return nil
}

// RecordAttempt increments attempt counters and returns the updated puzzle
func (r *SqliteRepository) RecordAttempt(ctx context.Context, id string, solved bool) (*models.Puzzle, error) {
	solveInc := 0
	if solved {
		solveInc = 1
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE puzzles
		SET total_attempts = total_attempts + 1,
		    successful_solves = successful_solves + ?
		WHERE id = ?`, solveInc, id)
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetPuzzle(ctx, id)
}

// LatestDifficulty returns the most recent recorded difficulty for a category
func (r *SqliteRepository) LatestDifficulty(ctx context.Context, category models.Category) (float64, bool, error) {
	var difficulty float64
	err := r.db.QueryRowContext(ctx, `
		SELECT difficulty FROM difficulty_history
		WHERE category = ?
		ORDER BY date DESC
		LIMIT 1`, string(category)).Scan(&difficulty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get latest difficulty: %w", err)
	}
	return difficulty, true, nil
}

// CreateDifficultyHistory records an adjustment, unique per (category, date)
func (r *SqliteRepository) CreateDifficultyHistory(ctx context.Context, h *models.DifficultyHistory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO difficulty_history (category, date, difficulty, previous_difficulty, adjustment_reason)
		VALUES (?, ?, ?, ?, ?)`,
		string(h.Category), h.Date, h.Difficulty, h.PreviousDifficulty, h.AdjustmentReason)
	if err != nil {
		return fmt.Errorf("failed to create difficulty history: %w", err)
	}
	return nil
}

// GetDifficultyHistory retrieves the adjustment for a category and date
func (r *SqliteRepository) GetDifficultyHistory(ctx context.Context, category models.Category, date string) (*models.DifficultyHistory, error) {
	var h models.DifficultyHistory
	var categoryStr string

	err := r.db.QueryRowContext(ctx, `
		SELECT category, date, difficulty, previous_difficulty, adjustment_reason
		FROM difficulty_history
		WHERE category = ? AND date = ?`, string(category), date).Scan(
		&categoryStr, &h.Date, &h.Difficulty, &h.PreviousDifficulty, &h.AdjustmentReason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get difficulty history: %w", err)
	}

	h.Category = models.Category(categoryStr)
	return &h, nil
}

// ListDifficultyHistory returns recent adjustments, newest first
func (r *SqliteRepository) ListDifficultyHistory(ctx context.Context, category models.Category, limit int) ([]*models.DifficultyHistory, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, date, difficulty, previous_difficulty, adjustment_reason
		FROM difficulty_history
		WHERE category = ?
		ORDER BY date DESC
		LIMIT ?`, string(category), limit)
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

// UpsertStumpTally increments a model's generated/stump counters
func (r *SqliteRepository) UpsertStumpTally(ctx context.Context, model string, category models.Category, stumped bool) error {
	stumpInc := 0
	if stumped {
		stumpInc = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stump_tallies (model, category, total_generated, successful_stumps, last_updated)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (model, category) DO UPDATE
		SET total_generated = total_generated + 1,
		    successful_stumps = successful_stumps + ?,
		    last_updated = ?`,
		model, string(category), stumpInc, time.Now().UTC(), stumpInc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert stump tally: %w", err)
	}
	return nil
}

// ListStumpTallies returns all tallies ordered by stump count
func (r *SqliteRepository) ListStumpTallies(ctx context.Context) ([]*models.StumpTally, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT model, category, total_generated, successful_stumps, last_updated
		FROM stump_tallies
		ORDER BY successful_stumps DESC, model ASC`)
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
func (r *SqliteRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = ?`, apiKey).Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
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
func (r *SqliteRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE api_clients SET last_used_at = ? WHERE api_key = ?`,
		time.Now().UTC(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}
	return nil
}
