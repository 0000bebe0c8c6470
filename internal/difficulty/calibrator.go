package difficulty

import (
	"errors"
	"fmt"
	"math"
)

// ErrTargetOutOfRange is returned when a target difficulty falls outside [0,1]
var ErrTargetOutOfRange = errors.New("target difficulty out of range")

// DefaultTolerance is the accepted gap between a band's composite difficulty
// and the target it was selected for.
const DefaultTolerance = 0.15

// Band is one calibration preset: targets strictly below UpperBound (and not
// claimed by an earlier band) map to the band's fixed factor literal.
type Band struct {
	Name       string
	UpperBound float64
	Factors    Factors
}

// bands is the ordered lookup table of difficulty presets. The literals were
// hand-tuned against the composite formula and can drift from it if either
// changes independently; ValidateMatch surfaces the drift but does not
// correct it.
var bands = []Band{
	{
		Name:       "mini-easy",
		UpperBound: 0.25,
		Factors: Factors{
			KnowledgeDomain:             DomainUniversal,
			CulturalScope:               ScopeGlobal,
			CognitiveLoad:               LoadRecognition,
			TimePeriodObscurity:         0.0,
			TechnicalSpecificity:        0.1,
			InterdisciplinaryComplexity: 0.0,
		},
	},
	{
		Name:       "mini-hard",
		UpperBound: 0.45,
		Factors: Factors{
			KnowledgeDomain:             DomainMainstream,
			CulturalScope:               ScopeGlobal,
			CognitiveLoad:               LoadRecognition,
			TimePeriodObscurity:         0.2,
			TechnicalSpecificity:        0.2,
			InterdisciplinaryComplexity: 0.1,
		},
	},
	{
		Name:       "mid-easy",
		UpperBound: 0.65,
		Factors: Factors{
			KnowledgeDomain:             DomainEducated,
			CulturalScope:               ScopeWestern,
			CognitiveLoad:               LoadAnalysis,
			TimePeriodObscurity:         0.4,
			TechnicalSpecificity:        0.4,
			InterdisciplinaryComplexity: 0.3,
		},
	},
	{
		Name:       "mid-hard",
		UpperBound: 0.8,
		Factors: Factors{
			KnowledgeDomain:             DomainSpecialized,
			CulturalScope:               ScopeRegional,
			CognitiveLoad:               LoadSynthesis,
			TimePeriodObscurity:         0.6,
			TechnicalSpecificity:        0.6,
			InterdisciplinaryComplexity: 0.5,
		},
	},
	{
		Name:       "beast",
		UpperBound: math.Inf(1),
		Factors: Factors{
			KnowledgeDomain:             DomainExpert,
			CulturalScope:               ScopeNiche,
			CognitiveLoad:               LoadEvaluation,
			TimePeriodObscurity:         0.8,
			TechnicalSpecificity:        0.8,
			InterdisciplinaryComplexity: 0.7,
		},
	},
}

// Calibrator maps target difficulty scalars to factor presets and applies
// solve-rate feedback. It holds no state; every method is a pure function of
// its inputs.
type Calibrator struct{}

// NewCalibrator creates a new difficulty calibrator
func NewCalibrator() *Calibrator {
	return &Calibrator{}
}

// GenerateFactors quantizes the target into one of five bands and returns
// that band's factor literal. Targets outside [0,1] are rejected, never
// clamped. The constraints parameter is reserved for future factor selection
// and currently ignored.
func (c *Calibrator) GenerateFactors(target float64, constraints map[string]string) (Factors, error) {
	if math.IsNaN(target) || target < 0 || target > 1 {
		return Factors{}, fmt.Errorf("%w: %v", ErrTargetOutOfRange, target)
	}
	_ = constraints

	return bandFor(target).Factors, nil
}

// BandName returns the name of the band the target falls in, for logging.
// Targets outside [0,1] return an empty name.
func (c *Calibrator) BandName(target float64) string {
	if math.IsNaN(target) || target < 0 || target > 1 {
		return ""
	}
	return bandFor(target).Name
}

func bandFor(target float64) Band {
	for _, b := range bands {
		if target < b.UpperBound {
			return b
		}
	}
	return bands[len(bands)-1]
}

// ValidateMatch reports whether the factors' composite difficulty lands
// within tolerance of the target. This is a sanity check only; callers log
// mismatches rather than correcting them.
func (c *Calibrator) ValidateMatch(f Factors, target, tolerance float64) bool {
	return math.Abs(f.Composite()-target) <= tolerance
}

// AdjustForPerformance nudges the three continuous dials from observed
// community solve rate. Above 0.7 the puzzle was too easy and the dials grow
// by 20%; below 0.3 they shrink by 20%; inside the target band the input is
// returned unchanged. Enum fields never move. Results stay within [0,1].
func (c *Calibrator) AdjustForPerformance(f Factors, solveRate float64) Factors {
	var adjustment float64
	switch {
	case solveRate > 0.7:
		adjustment = 1.2
	case solveRate < 0.3:
		adjustment = 0.8
	default:
		return f
	}

	return Factors{
		KnowledgeDomain:             f.KnowledgeDomain,
		CulturalScope:               f.CulturalScope,
		CognitiveLoad:               f.CognitiveLoad,
		TimePeriodObscurity:         clamp01(f.TimePeriodObscurity * adjustment),
		TechnicalSpecificity:        clamp01(f.TechnicalSpecificity * adjustment),
		InterdisciplinaryComplexity: clamp01(f.InterdisciplinaryComplexity * adjustment),
	}
}
