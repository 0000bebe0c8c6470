package validation

import (
	"log/slog"
	"math"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// ValidThreshold is the minimum overall score for a puzzle to be marked
// valid. Validity additionally requires the absence of critical issues.
const ValidThreshold = 0.7

// Validator runs the heuristic quality checks over puzzle content
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate runs the full art validation pipeline: content quality,
// difficulty alignment, cultural accessibility, art domain focus, and
// factual indicators. Metric maps from every sub-check are unioned into
// QualityMetrics; the accessibility pair is also reported separately.
func (v *Validator) Validate(content models.PuzzleContent, factors difficulty.Factors, target float64) Result {
	var issues []Issue
	metrics := map[string]float64{}

	contentIssues, contentMetrics := v.checkContentQuality(content)
	issues = append(issues, contentIssues...)
	mergeMetrics(metrics, contentMetrics)

	alignIssues, assessment := v.checkDifficultyAlignment(content, factors, target)
	issues = append(issues, alignIssues...)

	culturalIssues, culturalMetrics := v.checkCulturalAccessibility(content)
	issues = append(issues, culturalIssues...)
	mergeMetrics(metrics, culturalMetrics)

	domainIssues, domainMetrics := v.checkArtDomain(content)
	issues = append(issues, domainIssues...)
	mergeMetrics(metrics, domainMetrics)

	factualIssues, factualMetrics := v.checkFactualIndicators(content)
	issues = append(issues, factualIssues...)
	mergeMetrics(metrics, factualMetrics)

	score := overallScore(issues, metrics)
	result := Result{
		IsValid:               score >= ValidThreshold && !hasCritical(issues),
		OverallScore:          score,
		Issues:                issues,
		QualityMetrics:        metrics,
		DifficultyAssessment:  assessment,
		CulturalAccessibility: culturalMetrics,
	}

	if v.logger != nil {
		v.logger.Debug("puzzle validated",
			"score", score,
			"valid", result.IsValid,
			"issues", len(issues))
	}

	return result
}

// ValidateBasic runs only the content quality check, for categories without
// a calibrated factor model.
func (v *Validator) ValidateBasic(content models.PuzzleContent, target float64) Result {
	issues, metrics := v.checkContentQuality(content)
	score := overallScore(issues, metrics)

	return Result{
		IsValid:              score >= ValidThreshold && !hasCritical(issues),
		OverallScore:         score,
		Issues:               issues,
		QualityMetrics:       metrics,
		DifficultyAssessment: Assessment{TargetDifficulty: target, CalculatedDifficulty: target},
	}
}

// overallScore averages the quality metrics, then subtracts a flat penalty
// per issue by severity. Clamped at zero and rounded to 3 decimals.
func overallScore(issues []Issue, metrics map[string]float64) float64 {
	sum := 0.0
	for _, v := range metrics {
		sum += v
	}
	base := sum / float64(maxI(1, len(metrics)))

	penalty := 0.0
	for _, issue := range issues {
		penalty += issue.Severity.Penalty()
	}

	return math.Round(math.Max(0, base-penalty)*1000) / 1000
}

func hasCritical(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func mergeMetrics(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
