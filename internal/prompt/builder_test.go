package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

func TestBuildArtPromptSections(t *testing.T) {
	b := NewBuilder()
	f := difficulty.Factors{
		KnowledgeDomain:             difficulty.DomainEducated,
		CulturalScope:               difficulty.ScopeWestern,
		CognitiveLoad:               difficulty.LoadAnalysis,
		TimePeriodObscurity:         0.4,
		TechnicalSpecificity:        0.4,
		InterdisciplinaryComplexity: 0.3,
	}

	p := b.Build(f, nil)

	assert.Contains(t, p, "DIFFICULTY SPECIFICATION:")
	assert.Contains(t, p, "Target Difficulty: 0.475")
	assert.Contains(t, p, "Knowledge Domain: educated")
	assert.Contains(t, p, "Draw from art history knowledge")
	assert.Contains(t, p, "Western art traditions")
	assert.Contains(t, p, "Require analysis of techniques")
	assert.Contains(t, p, "moderately known periods")
	assert.Contains(t, p, "specific techniques or terminology")
	assert.Contains(t, p, `"estimated_solve_time": 240`) // 4 minutes at 0.475
	assert.Contains(t, p, "solvable by approximately 64% of players")
	assert.NotContains(t, p, "Additional Constraints")
}

func TestBuildArtPromptThresholds(t *testing.T) {
	b := NewBuilder()

	easy := b.Build(difficulty.Factors{
		KnowledgeDomain: difficulty.DomainUniversal,
		CulturalScope:   difficulty.ScopeGlobal,
		CognitiveLoad:   difficulty.LoadRecognition,
	}, nil)
	assert.Contains(t, easy, "well-known periods (Renaissance")
	assert.Contains(t, easy, "general art terminology")

	hard := b.Build(difficulty.Factors{
		KnowledgeDomain:      difficulty.DomainExpert,
		CulturalScope:        difficulty.ScopeNiche,
		CognitiveLoad:        difficulty.LoadEvaluation,
		TimePeriodObscurity:  0.8,
		TechnicalSpecificity: 0.8,
	}, nil)
	assert.Contains(t, hard, "lesser-known periods")
	assert.Contains(t, hard, "specialized terminology")
}

func TestBuildArtPromptConstraints(t *testing.T) {
	b := NewBuilder()
	f := difficulty.Factors{
		KnowledgeDomain: difficulty.DomainMainstream,
		CulturalScope:   difficulty.ScopeGlobal,
		CognitiveLoad:   difficulty.LoadRecognition,
	}

	p := b.Build(f, map[string]string{"theme": "impressionism"})
	require.Contains(t, p, "Additional Constraints:")
	assert.Contains(t, p, `"theme":"impressionism"`)
}

func TestBuildBasic(t *testing.T) {
	b := NewBuilder()

	p := b.BuildBasic(models.CategoryMath, 0.3)
	assert.Contains(t, p, "Generate a math puzzle with beginner-friendly (Mini difficulty)")
	assert.Contains(t, p, "algebra, geometry, number theory")
	assert.True(t, strings.Contains(p, `"estimated_solve_time": 180`))

	p = b.BuildBasic(models.CategoryWord, 0.5)
	assert.Contains(t, p, "moderate challenge (Mid difficulty)")
	assert.Contains(t, p, "wordplay, riddles, anagrams")

	p = b.BuildBasic(models.CategoryWord, 0.9)
	assert.Contains(t, p, "expert-level challenge (Beast difficulty)")
}

func TestSolveEstimates(t *testing.T) {
	assert.Equal(t, 100.0, SolvePercentage(0))
	assert.Equal(t, 25.0, SolvePercentage(1))
	assert.InDelta(t, 62.5, SolvePercentage(0.5), 1e-9)

	assert.Equal(t, 2, SolveTimeMinutes(0))
	assert.Equal(t, 5, SolveTimeMinutes(0.5))
	assert.Equal(t, 8, SolveTimeMinutes(1))
}
