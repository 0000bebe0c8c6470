package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeMinimumScenario(t *testing.T) {
	f := Factors{
		KnowledgeDomain:             DomainUniversal,
		CulturalScope:               ScopeGlobal,
		CognitiveLoad:               LoadRecognition,
		TimePeriodObscurity:         0,
		TechnicalSpecificity:        0,
		InterdisciplinaryComplexity: 0,
	}
	// 0.1*0.4 + 0 + 0.2*0.3 + 0 = 0.1 with unit modifiers
	assert.InDelta(t, 0.1, f.Composite(), 1e-9)
}

func TestCompositeEasiestDomainOnly(t *testing.T) {
	f := Factors{
		KnowledgeDomain: DomainUniversal,
		CulturalScope:   ScopeGlobal,
		CognitiveLoad:   "", // weightless: isolates the domain term
	}
	assert.InDelta(t, 0.04, f.Composite(), 1e-9)
}

func TestCompositeMaximumClampsToOne(t *testing.T) {
	f := Factors{
		KnowledgeDomain:             DomainExpert,
		CulturalScope:               ScopeNiche,
		CognitiveLoad:               LoadEvaluation,
		TimePeriodObscurity:         1,
		TechnicalSpecificity:        1,
		InterdisciplinaryComplexity: 1,
	}
	assert.Equal(t, 1.0, f.Composite())
}

func TestCompositeRounding(t *testing.T) {
	f := bands[3].Factors // mid-hard
	// base 0.6, modifiers 1.18 and 1.10: 0.77880 -> 0.779
	assert.Equal(t, 0.779, f.Composite())
}

// TestCompositeStaysInUnitInterval sweeps the full enum grid with float
// extremes and checks the formula never escapes [0,1].
func TestCompositeStaysInUnitInterval(t *testing.T) {
	domains := []KnowledgeDomain{DomainUniversal, DomainMainstream, DomainEducated, DomainSpecialized, DomainExpert}
	scopes := []CulturalScope{ScopeGlobal, ScopeWestern, ScopeRegional, ScopeNiche}
	loads := []CognitiveLoad{LoadRecognition, LoadAnalysis, LoadSynthesis, LoadEvaluation}
	floats := []float64{0, 0.25, 0.5, 0.75, 1}

	for _, d := range domains {
		for _, s := range scopes {
			for _, l := range loads {
				for _, tp := range floats {
					for _, ts := range floats {
						for _, ic := range floats {
							f := Factors{
								KnowledgeDomain:             d,
								CulturalScope:               s,
								CognitiveLoad:               l,
								TimePeriodObscurity:         tp,
								TechnicalSpecificity:        ts,
								InterdisciplinaryComplexity: ic,
							}
							c := f.Composite()
							if c < 0 || c > 1 {
								t.Fatalf("composite %v out of range for %+v", c, f)
							}
						}
					}
				}
			}
		}
	}
}

func TestEnumWeightsAreOrdered(t *testing.T) {
	assert.Less(t, DomainUniversal.Weight(), DomainMainstream.Weight())
	assert.Less(t, DomainMainstream.Weight(), DomainEducated.Weight())
	assert.Less(t, DomainEducated.Weight(), DomainSpecialized.Weight())
	assert.Less(t, DomainSpecialized.Weight(), DomainExpert.Weight())

	assert.Less(t, ScopeGlobal.Weight(), ScopeWestern.Weight())
	assert.Less(t, ScopeWestern.Weight(), ScopeRegional.Weight())
	assert.Less(t, ScopeRegional.Weight(), ScopeNiche.Weight())

	assert.Less(t, LoadRecognition.Weight(), LoadAnalysis.Weight())
	assert.Less(t, LoadAnalysis.Weight(), LoadSynthesis.Weight())
	assert.Less(t, LoadSynthesis.Weight(), LoadEvaluation.Weight())
}
