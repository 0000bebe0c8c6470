// Package difficulty implements the multi-factor difficulty model and
// calibration for generated puzzles. Factors describe how hard a puzzle
// should be along six dimensions; a weighted formula collapses them into a
// single composite scalar in [0,1].
package difficulty

import "math"

// KnowledgeDomain orders required knowledge by accessibility
type KnowledgeDomain string

const (
	DomainUniversal   KnowledgeDomain = "universal"   // Leonardo da Vinci, Mona Lisa
	DomainMainstream  KnowledgeDomain = "mainstream"  // Van Gogh, Picasso, Beatles
	DomainEducated    KnowledgeDomain = "educated"    // art movements, classical composers
	DomainSpecialized KnowledgeDomain = "specialized" // specific techniques, regional artists
	DomainExpert      KnowledgeDomain = "expert"      // art theory, obscure periods
)

// Weight returns the difficulty contribution of the domain
func (d KnowledgeDomain) Weight() float64 {
	switch d {
	case DomainUniversal:
		return 0.1
	case DomainMainstream:
		return 0.3
	case DomainEducated:
		return 0.5
	case DomainSpecialized:
		return 0.7
	case DomainExpert:
		return 0.9
	}
	return 0
}

// Valid reports whether d is a known knowledge domain
func (d KnowledgeDomain) Valid() bool {
	switch d {
	case DomainUniversal, DomainMainstream, DomainEducated, DomainSpecialized, DomainExpert:
		return true
	}
	return false
}

// CulturalScope orders the cultural specificity of required knowledge
type CulturalScope string

const (
	ScopeGlobal   CulturalScope = "global"
	ScopeWestern  CulturalScope = "western"
	ScopeRegional CulturalScope = "regional"
	ScopeNiche    CulturalScope = "niche"
)

// Weight returns the difficulty contribution of the scope
func (s CulturalScope) Weight() float64 {
	switch s {
	case ScopeGlobal:
		return 0.0
	case ScopeWestern:
		return 0.2
	case ScopeRegional:
		return 0.4
	case ScopeNiche:
		return 0.6
	}
	return 0
}

// Valid reports whether s is a known cultural scope
func (s CulturalScope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeWestern, ScopeRegional, ScopeNiche:
		return true
	}
	return false
}

// CognitiveLoad orders the mental processing depth a puzzle demands
type CognitiveLoad string

const (
	LoadRecognition CognitiveLoad = "recognition" // "Who painted this?"
	LoadAnalysis    CognitiveLoad = "analysis"    // "What technique is used?"
	LoadSynthesis   CognitiveLoad = "synthesis"   // "How do these styles relate?"
	LoadEvaluation  CognitiveLoad = "evaluation"  // "Why is this historically significant?"
)

// Weight returns the difficulty contribution of the cognitive load
func (l CognitiveLoad) Weight() float64 {
	switch l {
	case LoadRecognition:
		return 0.2
	case LoadAnalysis:
		return 0.4
	case LoadSynthesis:
		return 0.6
	case LoadEvaluation:
		return 0.8
	}
	return 0
}

// Valid reports whether l is a known cognitive load
func (l CognitiveLoad) Valid() bool {
	switch l {
	case LoadRecognition, LoadAnalysis, LoadSynthesis, LoadEvaluation:
		return true
	}
	return false
}

// Factors is the immutable multi-dimensional description of how hard a
// puzzle should be. Float fields are always within [0,1]; the calibrator
// clamps them at construction.
type Factors struct {
	KnowledgeDomain             KnowledgeDomain `json:"knowledge_domain"`
	CulturalScope               CulturalScope   `json:"cultural_scope"`
	CognitiveLoad               CognitiveLoad   `json:"cognitive_load"`
	TimePeriodObscurity         float64         `json:"time_period_obscurity"`
	TechnicalSpecificity        float64         `json:"technical_specificity"`
	InterdisciplinaryComplexity float64         `json:"interdisciplinary_complexity"`
}

// Composite collapses the factors into a single difficulty scalar in [0,1].
// Enum weights combine into a weighted base, two multiplicative modifiers
// apply on top, and the result is clamped and rounded to 3 decimals.
func (f Factors) Composite() float64 {
	base := f.KnowledgeDomain.Weight()*0.4 +
		f.CulturalScope.Weight()*0.2 +
		f.CognitiveLoad.Weight()*0.3 +
		f.TimePeriodObscurity*0.1

	technical := 1.0 + f.TechnicalSpecificity*0.3
	interdisciplinary := 1.0 + f.InterdisciplinaryComplexity*0.2

	return round3(math.Min(1.0, base*technical*interdisciplinary))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
