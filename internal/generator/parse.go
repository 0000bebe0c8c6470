package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

const defaultSolveTime = 180 // seconds

// ParseCompletion extracts puzzle content from a raw model completion.
// Models sometimes wrap the JSON in prose, so the parser takes everything
// between the first '{' and the last '}'. Question, solution, and
// explanation are required; the rest gets defaults.
func ParseCompletion(raw string) (models.PuzzleContent, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return models.PuzzleContent{}, fmt.Errorf("%w: no JSON object in completion", ErrGeneration)
	}

	var content models.PuzzleContent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &content); err != nil {
		return models.PuzzleContent{}, fmt.Errorf("%w: invalid completion JSON: %v", ErrGeneration, err)
	}

	for field, value := range map[string]string{
		"question":    content.Question,
		"solution":    content.Solution,
		"explanation": content.Explanation,
	} {
		if strings.TrimSpace(value) == "" {
			return models.PuzzleContent{}, fmt.Errorf("%w: missing required field %q", ErrGeneration, field)
		}
	}

	if content.Hints == nil {
		content.Hints = []string{}
	}
	if content.EstimatedSolveTime <= 0 {
		content.EstimatedSolveTime = defaultSolveTime
	}

	return content, nil
}
