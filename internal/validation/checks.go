package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dailypuzzle/puzzle-engine/internal/difficulty"
	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// Keyword lists for the heuristic checks. Matching is case-insensitive
// substring presence: each keyword contributes at most once regardless of how
// often it appears. Proper nouns (artist or work names) are deliberately not
// listed, which is a known gap for questions that name a work without using
// any general art vocabulary.
var artKeywords = map[string][]string{
	"visual_arts":  {"painting", "sculpture", "artist", "canvas", "brush", "palette", "style", "technique"},
	"music":        {"composer", "symphony", "opera", "instrument", "melody", "harmony", "tempo", "genre"},
	"film":         {"director", "cinematography", "screenplay", "actor", "genre", "montage", "scene"},
	"architecture": {"architect", "building", "style", "structure", "design", "column", "arch", "blueprint"},
	"cultural":     {"movement", "period", "influence", "tradition", "context", "significance", "impact"},
}

var culturalFlags = []string{
	"slang", "colloquial", "regional dialect", "local custom", "insider knowledge",
}

var regionalIndicators = []string{
	"american", "european", "asian", "local", "regional", "native",
}

var complexWords = []string{
	"subsequently", "consequently", "furthermore", "nevertheless", "contemporaneous",
}

var subjectiveWords = []string{
	"probably", "might be", "could be", "seems like", "appears to",
}

var specificTerms = []string{
	"technique", "style", "movement", "period", "school", "method",
}

var verificationTerms = []string{
	"encyclopedia", "documented", "recorded", "established", "recognized",
}

var qualityIndicators = map[string][]string{
	"descriptive_words":   {"style", "technique", "period", "movement", "characteristics", "known for"},
	"context_clues":       {"famous for", "characterized by", "associated with", "known to", "typically"},
	"specificity_markers": {"specific", "particular", "exact", "precise", "exactly"},
}

var famousMarkers = []string{"famous", "well-known", "renowned", "celebrated"}

var basicMarkers = []string{"famous", "popular", "well-known"}

var (
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	dateRe       = regexp.MustCompile(`\b\d{4}\b|\b\d{1,2}th\s+century\b`)
)

func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// textLength counts characters, not bytes, so accented names are measured
// the same as plain ASCII.
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}

func (v *Validator) checkContentQuality(content models.PuzzleContent) ([]Issue, map[string]float64) {
	var issues []Issue
	metrics := map[string]float64{}

	qLen := textLength(content.Question)
	if qLen < 20 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "content_length",
			Message:    "Question seems too short for art puzzle complexity",
			Suggestion: "Consider adding more context or descriptive details",
		})
	}
	if qLen > 300 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "content_length",
			Message:    "Question is very long and might be overwhelming",
			Suggestion: "Consider simplifying while maintaining necessary context",
		})
	}

	solutionWords := len(strings.Fields(content.Solution))
	if strings.TrimSpace(content.Solution) == "" {
		issues = append(issues, Issue{
			Severity: SeverityCritical,
			Category: "solution_missing",
			Message:  "Solution cannot be empty",
		})
	}
	if solutionWords > 10 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "solution_length",
			Message:    "Solution is quite long - art answers should typically be concise",
			Suggestion: "Consider if a shorter, more specific answer is possible",
		})
	}

	eLen := textLength(content.Explanation)
	if eLen < 30 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "explanation_brief",
			Message:    "Explanation seems brief for an art puzzle",
			Suggestion: "Consider adding historical context or additional details",
		})
	}

	metrics["question_length_score"] = clamp01(float64(qLen-20) / 200)
	metrics["explanation_depth_score"] = minF(1, float64(eLen)/200)
	if solutionWords >= 1 && solutionWords <= 5 {
		metrics["solution_specificity_score"] = 1.0
	} else {
		metrics["solution_specificity_score"] = 0.5
	}

	return issues, metrics
}

func (v *Validator) checkDifficultyAlignment(content models.PuzzleContent, factors difficulty.Factors, target float64) ([]Issue, Assessment) {
	var issues []Issue

	calculated := factors.Composite()
	assessment := Assessment{
		TargetDifficulty:     target,
		CalculatedDifficulty: calculated,
		KnowledgeDomain:      string(factors.KnowledgeDomain),
		CulturalScope:        string(factors.CulturalScope),
		CognitiveLoad:        string(factors.CognitiveLoad),
	}

	question := strings.ToLower(content.Question)

	if delta := calculated - target; delta > 0.2 || delta < -0.2 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "difficulty_mismatch",
			Message:    fmt.Sprintf("Calculated difficulty (%.2f) differs significantly from target (%.2f)", calculated, target),
			Suggestion: "Review difficulty factors or adjust question complexity",
		})
	}

	switch factors.KnowledgeDomain {
	case difficulty.DomainUniversal:
		if countPresent(question, famousMarkers) == 0 {
			issues = append(issues, Issue{
				Severity:   SeverityInfo,
				Category:   "universal_domain",
				Message:    "Universal difficulty should reference well-known subjects",
				Suggestion: "Consider adding context about fame/recognition",
			})
		}
	case difficulty.DomainExpert:
		if countPresent(question, basicMarkers) > 0 {
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Category:   "expert_domain",
				Message:    "Expert difficulty shouldn't rely on popular knowledge",
				Suggestion: "Focus on specialized techniques, theories, or lesser-known aspects",
			})
		}
	}

	return issues, assessment
}

func (v *Validator) checkCulturalAccessibility(content models.PuzzleContent) ([]Issue, map[string]float64) {
	var issues []Issue
	metrics := map[string]float64{}

	fullText := strings.ToLower(content.Question + " " + content.Explanation)

	flagCount := countPresent(fullText, culturalFlags)
	if flagCount > 0 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "cultural_specificity",
			Message:    fmt.Sprintf("Found %d potentially culture-specific references", flagCount),
			Suggestion: "Ensure international accessibility or provide context",
		})
	}

	regionalCount := countPresent(fullText, regionalIndicators)
	metrics["cultural_accessibility"] = maxF(0, 1.0-float64(flagCount)*0.2-float64(regionalCount)*0.1)

	complexityCount := countPresent(fullText, complexWords)
	metrics["language_accessibility"] = maxF(0, 1.0-float64(complexityCount)*0.15)

	return issues, metrics
}

func (v *Validator) checkArtDomain(content models.PuzzleContent) ([]Issue, map[string]float64) {
	var issues []Issue
	metrics := map[string]float64{}

	fullText := strings.ToLower(content.Question + " " + content.Explanation)

	total := 0
	top := 0
	for _, keywords := range artKeywords {
		n := countPresent(fullText, keywords)
		total += n
		if n > top {
			top = n
		}
	}

	if total == 0 {
		issues = append(issues, Issue{
			Severity:   SeverityError,
			Category:   "art_domain_missing",
			Message:    "Puzzle doesn't contain clear art domain keywords",
			Suggestion: "Ensure question clearly relates to art, music, film, or culture",
		})
	}

	metrics["art_domain_strength"] = minF(1, float64(total)/3)
	metrics["domain_focus"] = float64(top) / float64(maxI(1, total))

	clueCount := 0
	for _, clues := range qualityIndicators {
		clueCount += countPresent(fullText, clues)
	}
	metrics["context_richness"] = minF(1, float64(clueCount)/3)

	return issues, metrics
}

func (v *Validator) checkFactualIndicators(content models.PuzzleContent) ([]Issue, map[string]float64) {
	var issues []Issue
	metrics := map[string]float64{}

	combined := strings.ToLower(content.Question + " " + content.Solution + " " + content.Explanation)
	subjectiveCount := countPresent(combined, subjectiveWords)
	if subjectiveCount > 0 {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "subjective_language",
			Message:    fmt.Sprintf("Found %d instances of uncertain language", subjectiveCount),
			Suggestion: "Art puzzles should have definitive, verifiable answers",
		})
	}

	indicators := 0
	if properNounRe.MatchString(content.Solution) {
		indicators++
	}
	if dateRe.MatchString(content.Question + " " + content.Explanation) {
		indicators++
	}
	explanation := strings.ToLower(content.Explanation)
	if countPresent(explanation, specificTerms) > 0 {
		indicators++
	}
	metrics["factual_specificity"] = float64(indicators) / 3

	found := countPresent(explanation, verificationTerms)
	metrics["verifiability_indicators"] = float64(found) / float64(len(verificationTerms))

	return issues, metrics
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	return maxF(0, minF(1, v))
}
