package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

func midEasyFactors() difficulty.Factors {
	return difficulty.Factors{
		KnowledgeDomain:             difficulty.DomainEducated,
		CulturalScope:               difficulty.ScopeWestern,
		CognitiveLoad:               difficulty.LoadAnalysis,
		TimePeriodObscurity:         0.4,
		TechnicalSpecificity:        0.4,
		InterdisciplinaryComplexity: 0.3,
	}
}

func miniHardFactors() difficulty.Factors {
	return difficulty.Factors{
		KnowledgeDomain:             difficulty.DomainMainstream,
		CulturalScope:               difficulty.ScopeGlobal,
		CognitiveLoad:               difficulty.LoadRecognition,
		TimePeriodObscurity:         0.2,
		TechnicalSpecificity:        0.2,
		InterdisciplinaryComplexity: 0.1,
	}
}

func TestValidateEmptyPuzzle(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(models.PuzzleContent{}, miniHardFactors(), 0.3)

	assert.False(t, result.IsValid)
	assert.True(t, result.HasCritical())
	assert.Equal(t, 0.0, result.OverallScore)

	categories := map[string]bool{}
	for _, issue := range result.Issues {
		categories[issue.Category] = true
	}
	assert.True(t, categories["solution_missing"])
	assert.True(t, categories["art_domain_missing"])
	assert.True(t, categories["content_length"])
}

func TestValidateWellKnownRecognitionPuzzle(t *testing.T) {
	v := NewValidator(nil)

	content := models.PuzzleContent{
		Question:    "Which artist painted Starry Night?",
		Solution:    "Van Gogh",
		Explanation: "Vincent van Gogh painted Starry Night in 1889 while at an asylum in Saint-Rémy.",
	}

	result := v.Validate(content, miniHardFactors(), 0.3)

	// "artist" is the single domain keyword match; the work and artist names
	// themselves are invisible to the keyword lists.
	for _, issue := range result.Issues {
		assert.NotEqual(t, SeverityError, issue.Severity, "unexpected error issue: %s", issue.Message)
		assert.NotEqual(t, SeverityCritical, issue.Severity)
	}
	assert.Empty(t, result.Issues)

	assert.GreaterOrEqual(t, result.OverallScore, 0.5)
	assert.InDelta(t, 0.547, result.OverallScore, 0.002)

	// Below the validity threshold despite a clean issue list: the short
	// question and thin explanation drag the metric mean down.
	assert.False(t, result.IsValid)

	assert.Equal(t, 1.0, result.QualityMetrics["domain_focus"])
	assert.InDelta(t, 1.0/3, result.QualityMetrics["art_domain_strength"], 1e-9)
	assert.Equal(t, 1.0, result.QualityMetrics["cultural_accessibility"])
	assert.InDelta(t, 2.0/3, result.QualityMetrics["factual_specificity"], 1e-9)
}

func TestValidateRichPuzzleIsValid(t *testing.T) {
	v := NewValidator(nil)

	content := models.PuzzleContent{
		Question:    "Which art movement, famous for geometric forms and multiple perspectives on a single canvas, was pioneered by Picasso and Braque in the early 20th century?",
		Solution:    "Cubism",
		Explanation: "Cubism is the recognized movement founded by Pablo Picasso and Georges Braque around 1907. The style abandoned single-point perspective in favor of fragmented geometric planes, a technique first documented in Les Demoiselles d'Avignon and developed through the analytic period that followed.",
	}

	result := v.Validate(content, midEasyFactors(), 0.5)

	require.Empty(t, result.Issues)
	assert.True(t, result.IsValid)
	assert.GreaterOrEqual(t, result.OverallScore, 0.8)
	assert.Equal(t, 1.0, result.QualityMetrics["art_domain_strength"])
	assert.Equal(t, 1.0, result.QualityMetrics["context_richness"])
	assert.Equal(t, 1.0, result.QualityMetrics["factual_specificity"])
}

func TestValidateDifficultyMismatch(t *testing.T) {
	v := NewValidator(nil)

	content := models.PuzzleContent{
		Question:    "Which artist painted the ceiling of the Sistine Chapel in Rome?",
		Solution:    "Michelangelo",
		Explanation: "Michelangelo painted the Sistine Chapel ceiling between 1508 and 1512, a monumental fresco technique achievement.",
	}

	// mid-easy factors compute 0.475, far from a 0.1 target
	result := v.Validate(content, midEasyFactors(), 0.1)

	found := false
	for _, issue := range result.Issues {
		if issue.Category == "difficulty_mismatch" {
			found = true
			assert.Equal(t, SeverityWarning, issue.Severity)
		}
	}
	assert.True(t, found)
	assert.InDelta(t, 0.475, result.DifficultyAssessment.CalculatedDifficulty, 1e-9)
	assert.Equal(t, 0.1, result.DifficultyAssessment.TargetDifficulty)
}

func TestValidateDomainHeuristics(t *testing.T) {
	v := NewValidator(nil)

	t.Run("universal without fame markers", func(t *testing.T) {
		f := difficulty.Factors{
			KnowledgeDomain: difficulty.DomainUniversal,
			CulturalScope:   difficulty.ScopeGlobal,
			CognitiveLoad:   difficulty.LoadRecognition,
		}
		content := models.PuzzleContent{
			Question:    "Which artist created the Mona Lisa painting?",
			Solution:    "Leonardo da Vinci",
			Explanation: "Leonardo da Vinci painted the Mona Lisa, a portrait in the sfumato technique.",
		}
		result := v.Validate(content, f, 0.1)
		assert.Equal(t, 1, result.IssuesBySeverity(SeverityInfo))
	})

	t.Run("expert leaning on popular knowledge", func(t *testing.T) {
		f := difficulty.Factors{
			KnowledgeDomain:      difficulty.DomainExpert,
			CulturalScope:        difficulty.ScopeNiche,
			CognitiveLoad:        difficulty.LoadEvaluation,
			TimePeriodObscurity:  0.8,
			TechnicalSpecificity: 0.8,
		}
		content := models.PuzzleContent{
			Question:    "Which famous artist is associated with the drip painting technique?",
			Solution:    "Jackson Pollock",
			Explanation: "Jackson Pollock developed the drip technique, a style central to abstract expressionism as a movement.",
		}
		result := v.Validate(content, f, 0.9)

		found := false
		for _, issue := range result.Issues {
			if issue.Category == "expert_domain" {
				found = true
				assert.Equal(t, SeverityWarning, issue.Severity)
			}
		}
		assert.True(t, found)
	})
}

func TestValidateSubjectiveLanguage(t *testing.T) {
	v := NewValidator(nil)

	content := models.PuzzleContent{
		Question:    "Which painting technique might be the one Monet probably used?",
		Solution:    "Impressionism",
		Explanation: "It seems like Monet probably used loose brushwork, which appears to define the style.",
	}

	result := v.Validate(content, miniHardFactors(), 0.3)

	found := false
	for _, issue := range result.Issues {
		if issue.Category == "subjective_language" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateCulturalFlags(t *testing.T) {
	v := NewValidator(nil)

	content := models.PuzzleContent{
		Question:    "Which regional dialect term from American slang describes this local custom in painting?",
		Solution:    "Unknown",
		Explanation: "This relies on insider knowledge of a local custom and regional slang from American tradition.",
	}

	result := v.Validate(content, miniHardFactors(), 0.3)

	found := false
	for _, issue := range result.Issues {
		if issue.Category == "cultural_specificity" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Less(t, result.CulturalAccessibility["cultural_accessibility"], 0.5)
	assert.Equal(t, result.CulturalAccessibility["cultural_accessibility"], result.QualityMetrics["cultural_accessibility"])
}

func TestValidateBasic(t *testing.T) {
	v := NewValidator(nil)

	t.Run("empty solution is critical", func(t *testing.T) {
		result := v.ValidateBasic(models.PuzzleContent{
			Question:    "What is the next number in the sequence 2, 4, 8, 16?",
			Solution:    "   ",
			Explanation: "Each term doubles the previous one, giving 32 as the next term.",
		}, 0.3)
		assert.False(t, result.IsValid)
		assert.True(t, result.HasCritical())
	})

	t.Run("content metrics only", func(t *testing.T) {
		result := v.ValidateBasic(models.PuzzleContent{
			Question:    "A train travels 120 miles in 1.5 hours. What is its average speed in miles per hour?",
			Solution:    "80 mph",
			Explanation: "Average speed equals distance divided by time: 120 miles over 1.5 hours gives 80 miles per hour.",
		}, 0.4)
		assert.False(t, result.HasCritical())
		assert.Empty(t, result.Issues)
		assert.Len(t, result.QualityMetrics, 3)
		assert.Equal(t, 1.0, result.QualityMetrics["solution_specificity_score"])
	})
}

func TestSeverityPenalties(t *testing.T) {
	assert.Equal(t, 0.05, SeverityInfo.Penalty())
	assert.Equal(t, 0.15, SeverityWarning.Penalty())
	assert.Equal(t, 0.3, SeverityError.Penalty())
	assert.Equal(t, 0.5, SeverityCritical.Penalty())
	assert.Equal(t, 0.0, Severity("bogus").Penalty())
}
