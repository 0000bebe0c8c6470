// Package prompt builds generation prompts from difficulty factors. The art
// prompt is the calibrated one; other categories get a simpler template keyed
// only on the composite difficulty.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// Builder renders generation prompts
type Builder struct{}

// NewBuilder creates a prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the calibrated art prompt for the given factors. Constraints
// are appended verbatim as a JSON block when present.
func (b *Builder) Build(f difficulty.Factors, constraints map[string]string) string {
	target := f.Composite()

	var sb strings.Builder
	sb.WriteString(`You are an expert art puzzle creator for "The Daily Puzzle" game. Generate a sophisticated art puzzle with precise difficulty calibration.`)
	sb.WriteString("\n\nDIFFICULTY SPECIFICATION:\n")
	fmt.Fprintf(&sb, "- Target Difficulty: %.3f (on 0.0-1.0 scale)\n", target)
	fmt.Fprintf(&sb, "- Knowledge Domain: %s\n", f.KnowledgeDomain)
	fmt.Fprintf(&sb, "- Cultural Scope: %s\n", f.CulturalScope)
	fmt.Fprintf(&sb, "- Cognitive Load: %s\n", f.CognitiveLoad)
	fmt.Fprintf(&sb, "- Time Period Obscurity: %.2f\n", f.TimePeriodObscurity)
	fmt.Fprintf(&sb, "- Technical Specificity: %.2f\n", f.TechnicalSpecificity)
	fmt.Fprintf(&sb, "- Interdisciplinary Complexity: %.2f\n", f.InterdisciplinaryComplexity)

	sb.WriteString("\nCONTENT GUIDELINES:\n")
	sb.WriteString(domainContext(f.KnowledgeDomain))
	sb.WriteString("\n\n")
	sb.WriteString(scopeGuidelines(f.CulturalScope))
	sb.WriteString("\n\n")
	sb.WriteString(cognitiveInstructions(f.CognitiveLoad))
	sb.WriteString("\n\n")
	sb.WriteString(periodContext(f.TimePeriodObscurity))
	sb.WriteString("\n\n")
	sb.WriteString(technicalRequirements(f.TechnicalSpecificity))

	sb.WriteString(`

QUALITY REQUIREMENTS:
- Ensure factual accuracy and verifiable answers
- Avoid visual recognition requiring specific images
- Focus on describable characteristics, historical facts, or well-known associations
- Include sufficient context clues for fair solving
- Balance challenge with solvability for the target difficulty
`)

	sb.WriteString("\nDIFFICULTY VALIDATION:\n")
	fmt.Fprintf(&sb, "The puzzle should be solvable by approximately %.0f%% of players familiar with art.\n", SolvePercentage(target))
	fmt.Fprintf(&sb, "Estimated solve time: %d minutes.\n", SolveTimeMinutes(target))

	sb.WriteString("\nRespond in this exact JSON format:\n")
	fmt.Fprintf(&sb, `{
    "question": "The sophisticated art puzzle question",
    "solution": "The precise correct answer",
    "explanation": "Detailed explanation including artistic/cultural context",
    "hints": ["strategic hint 1", "strategic hint 2"],
    "media_url": null,
    "estimated_solve_time": %d,
    "difficulty_justification": "Detailed analysis of why this matches the difficulty factors",
    "knowledge_verification": "How to verify this answer (sources, references)",
    "cultural_considerations": "Any cultural context important for understanding"
}
`, SolveTimeMinutes(target)*60)

	sb.WriteString("\nGenerate the art puzzle now:")

	if len(constraints) > 0 {
		// Keys sort deterministically through json.Marshal on a string map.
		raw, err := json.Marshal(constraints)
		if err == nil {
			fmt.Fprintf(&sb, "\n\nAdditional Constraints: %s", raw)
		}
	}

	return sb.String()
}

// BuildBasic renders the uncalibrated prompt used for the math and word
// categories, keyed only on the composite difficulty scalar.
func (b *Builder) BuildBasic(category models.Category, target float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert puzzle creator for "The Daily Puzzle" game. Generate a %s puzzle with %s.`, category, DifficultyDescription(target))
	fmt.Fprintf(&sb, "\n\nContext: %s\n", categoryContext(category))
	sb.WriteString(`
Requirements:
- Create an engaging, fair puzzle appropriate for the difficulty level
- Ensure there is exactly one correct answer
- Make the puzzle solvable within 5 minutes for someone with appropriate skill level
- Avoid culturally specific references that might confuse international users
- For math: Show clear problem setup, avoid trick questions
- For word: Ensure wordplay is clever but not obscure

Respond in this exact JSON format:
{
    "question": "The puzzle question/prompt",
    "solution": "The exact correct answer",
    "explanation": "Clear explanation of how to solve it",
    "hints": ["optional hint 1", "optional hint 2"],
    "media_url": null,
    "estimated_solve_time": 180,
    "difficulty_justification": "Why this matches the requested difficulty"
}

Generate a high-quality puzzle now:`)

	return sb.String()
}

// SolvePercentage estimates what share of the target audience should solve a
// puzzle of the given difficulty. Linear decay from 100% at 0 to 25% at 1.
func SolvePercentage(target float64) float64 {
	return 75*(1-target) + 25
}

// SolveTimeMinutes estimates solve time in minutes, 2 to 8 across the scale
func SolveTimeMinutes(target float64) int {
	n := int(2 + target*6)
	if n < 2 {
		return 2
	}
	return n
}

// DifficultyDescription converts a difficulty scalar to the descriptive text
// used in prompts and logs.
func DifficultyDescription(target float64) string {
	switch {
	case target < 0.4:
		return "beginner-friendly (Mini difficulty)"
	case target < 0.7:
		return "moderate challenge (Mid difficulty)"
	default:
		return "expert-level challenge (Beast difficulty)"
	}
}

func categoryContext(category models.Category) string {
	switch category {
	case models.CategoryMath:
		return "Focus on algebra, geometry, number theory, or applied mathematics. Ensure solutions are precise and verifiable."
	case models.CategoryWord:
		return "Create wordplay, riddles, anagrams, or language puzzles. Solutions should be clever but unambiguous."
	case models.CategoryArt:
		return "Create puzzles about visual arts, music, film, architecture, or cultural knowledge. Ensure answers are factual and verifiable."
	}
	return "General puzzle"
}

func domainContext(d difficulty.KnowledgeDomain) string {
	var ctx string
	switch d {
	case difficulty.DomainUniversal:
		ctx = "Focus on globally recognized masterpieces and artists known worldwide (Da Vinci, Picasso, etc.)"
	case difficulty.DomainMainstream:
		ctx = "Include well-known artists and works familiar to educated audiences (Van Gogh, Impressionism, etc.)"
	case difficulty.DomainEducated:
		ctx = "Draw from art history knowledge expected of college-educated individuals (specific movements, techniques)"
	case difficulty.DomainSpecialized:
		ctx = "Require specialized knowledge of specific periods, regional traditions, or technical aspects"
	case difficulty.DomainExpert:
		ctx = "Demand expert-level knowledge of art theory, obscure periods, or highly specialized techniques"
	}
	return "Knowledge Domain: " + ctx
}

func scopeGuidelines(s difficulty.CulturalScope) string {
	var g string
	switch s {
	case difficulty.ScopeGlobal:
		g = "Use universally recognized cultural references accessible to international audiences"
	case difficulty.ScopeWestern:
		g = "Focus on Western art traditions but ensure broad accessibility within that tradition"
	case difficulty.ScopeRegional:
		g = "May include region-specific knowledge (European, Asian, etc.) with context provided"
	case difficulty.ScopeNiche:
		g = "Can reference specialized cultural knowledge with appropriate background context"
	}
	return "Cultural Scope: " + g
}

func cognitiveInstructions(l difficulty.CognitiveLoad) string {
	var ins string
	switch l {
	case difficulty.LoadRecognition:
		ins = "Create identification/recognition questions requiring factual recall"
	case difficulty.LoadAnalysis:
		ins = "Require analysis of techniques, styles, or characteristics"
	case difficulty.LoadSynthesis:
		ins = "Demand synthesis of multiple concepts or comparison of elements"
	case difficulty.LoadEvaluation:
		ins = "Require evaluation of significance, influence, or artistic merit"
	}
	return "Cognitive Requirement: " + ins
}

func periodContext(obscurity float64) string {
	switch {
	case obscurity < 0.3:
		return "Time Period: Focus on well-known periods (Renaissance, Impressionism, Classical, etc.)"
	case obscurity < 0.6:
		return "Time Period: Include moderately known periods with some context provided"
	default:
		return "Time Period: May reference lesser-known periods but provide sufficient historical context"
	}
}

func technicalRequirements(specificity float64) string {
	switch {
	case specificity < 0.3:
		return "Technical Level: Use general art terminology accessible to educated audiences"
	case specificity < 0.6:
		return "Technical Level: Include specific techniques or terminology with context provided"
	default:
		return "Technical Level: May use specialized terminology but ensure clarity and context"
	}
}
