package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

func newTestRepo(t *testing.T) *SqliteRepository {
	t.Helper()
	repo, err := NewSqliteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testPuzzle(id string) *models.Puzzle {
	return &models.Puzzle{
		ID:             id,
		Category:       models.CategoryArt,
		Difficulty:     0.5,
		GeneratorModel: "claude4",
		Content: models.PuzzleContent{
			Question:           "Which artist painted Guernica?",
			Solution:           "Picasso",
			Explanation:        "Painted in 1937 in response to the bombing of Guernica.",
			Hints:              []string{"Spanish artist"},
			EstimatedSolveTime: 240,
		},
		ValidatorReport: json.RawMessage(`{"overall_score":0.8}`),
		CreatedAt:       time.Now().UTC().Truncate(time.Second),
		IsActive:        true,
	}
}

func TestSqlitePuzzleRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	p := testPuzzle("2026-08-29")
	require.NoError(t, repo.CreatePuzzle(ctx, p))

	got, err := repo.GetPuzzle(ctx, "2026-08-29")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, models.CategoryArt, got.Category)
	assert.Equal(t, 0.5, got.Difficulty)
	assert.Equal(t, "Picasso", got.Content.Solution)
	assert.JSONEq(t, `{"overall_score":0.8}`, string(got.ValidatorReport))

	missing, err := repo.GetPuzzle(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSqliteUpdatePuzzle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := testPuzzle("2026-08-29")
	require.NoError(t, repo.CreatePuzzle(ctx, p))

	p.Difficulty = 0.65
	p.IsActive = false
	require.NoError(t, repo.UpdatePuzzle(ctx, p))

	got, err := repo.GetPuzzle(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.65, got.Difficulty)
	assert.False(t, got.IsActive)

	err = repo.UpdatePuzzle(ctx, testPuzzle("2000-01-01"))
	assert.Error(t, err)
}

func TestSqliteRecordAttempt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePuzzle(ctx, testPuzzle("2026-08-29")))

	got, err := repo.RecordAttempt(ctx, "2026-08-29", true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalAttempts)
	assert.Equal(t, 1, got.SuccessfulSolves)

	got, err = repo.RecordAttempt(ctx, "2026-08-29", false)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalAttempts)
	assert.Equal(t, 1, got.SuccessfulSolves)
	assert.Equal(t, 0.5, got.SolveRate())

	gone, err := repo.RecordAttempt(ctx, "1999-01-01", true)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSqliteDifficultyHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, found, err := repo.LatestDifficulty(ctx, models.CategoryArt)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.CreateDifficultyHistory(ctx, &models.DifficultyHistory{
		Category:           models.CategoryArt,
		Date:               "2026-08-28",
		Difficulty:         0.5,
		PreviousDifficulty: 0.45,
		AdjustmentReason:   "community solved quickly",
	}))
	require.NoError(t, repo.CreateDifficultyHistory(ctx, &models.DifficultyHistory{
		Category:           models.CategoryArt,
		Date:               "2026-08-29",
		Difficulty:         0.55,
		PreviousDifficulty: 0.5,
		AdjustmentReason:   "community solved quickly",
	}))

	latest, found, err := repo.LatestDifficulty(ctx, models.CategoryArt)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.55, latest)

	// second insert for the same (category, date) must fail
	err = repo.CreateDifficultyHistory(ctx, &models.DifficultyHistory{
		Category: models.CategoryArt,
		Date:     "2026-08-29",
	})
	assert.Error(t, err)

	h, err := repo.GetDifficultyHistory(ctx, models.CategoryArt, "2026-08-29")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 0.5, h.PreviousDifficulty)

	none, err := repo.GetDifficultyHistory(ctx, models.CategoryMath, "2026-08-29")
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := repo.ListDifficultyHistory(ctx, models.CategoryArt, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-08-29", list[0].Date)
}

func TestSqliteStumpTallies(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertStumpTally(ctx, "claude4", models.CategoryArt, false))
	require.NoError(t, repo.UpsertStumpTally(ctx, "claude4", models.CategoryArt, true))
	require.NoError(t, repo.UpsertStumpTally(ctx, "gpt", models.CategoryMath, false))

	tallies, err := repo.ListStumpTallies(ctx)
	require.NoError(t, err)
	require.Len(t, tallies, 2)

	// claude4 first: one stump out of two generated
	assert.Equal(t, "claude4", tallies[0].Model)
	assert.Equal(t, 2, tallies[0].TotalGenerated)
	assert.Equal(t, 1, tallies[0].SuccessfulStumps)
	assert.Equal(t, 0.5, tallies[0].StumpRate())
}

func TestSqliteApiClients(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO api_clients (name, api_key, is_active, created_at, permissions)
		VALUES ('test', 'key-123', 1, ?, '["puzzles:read"]')`, time.Now().UTC())
	require.NoError(t, err)

	client, err := repo.GetClientByApiKey(ctx, "key-123")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "test", client.Name)
	assert.True(t, client.HasPermission("puzzles:read"))
	assert.False(t, client.HasPermission("puzzles:write"))

	require.NoError(t, repo.UpdateClientLastUsed(ctx, "key-123"))
	client, err = repo.GetClientByApiKey(ctx, "key-123")
	require.NoError(t, err)
	assert.NotNil(t, client.LastUsedAt)

	missing, err := repo.GetClientByApiKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
