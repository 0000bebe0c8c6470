// Package validation scores generated puzzles with data-driven heuristic
// checks over normalized text. No language tooling is involved; precision is
// bounded by the fixed keyword lists.
package validation

// Severity grades a validation issue
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Penalty returns the score deduction applied per issue of this severity
func (s Severity) Penalty() float64 {
	switch s {
	case SeverityInfo:
		return 0.05
	case SeverityWarning:
		return 0.15
	case SeverityError:
		return 0.3
	case SeverityCritical:
		return 0.5
	}
	return 0
}

// Issue is a single problem found during validation
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Assessment summarizes how the puzzle's factors relate to its target
// difficulty.
type Assessment struct {
	TargetDifficulty     float64 `json:"target_difficulty"`
	CalculatedDifficulty float64 `json:"calculated_difficulty"`
	KnowledgeDomain      string  `json:"knowledge_domain,omitempty"`
	CulturalScope        string  `json:"cultural_scope,omitempty"`
	CognitiveLoad        string  `json:"cognitive_load,omitempty"`
}

// Result is the full outcome of validating one puzzle.
//
// QualityMetrics is the union of every sub-check's metric map, including the
// accessibility scores, which are also broken out separately in
// CulturalAccessibility for reporting.
type Result struct {
	IsValid               bool               `json:"is_valid"`
	OverallScore          float64            `json:"overall_score"`
	Issues                []Issue            `json:"issues"`
	QualityMetrics        map[string]float64 `json:"quality_metrics"`
	DifficultyAssessment  Assessment         `json:"difficulty_assessment"`
	CulturalAccessibility map[string]float64 `json:"cultural_accessibility"`
}

// HasCritical reports whether any issue is critical
func (r Result) HasCritical() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// IssuesBySeverity counts issues at the given severity
func (r Result) IssuesBySeverity(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}
