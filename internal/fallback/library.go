// Package fallback holds the pre-authored puzzle library used when
// generation fails. Entries ship compiled in and can be extended from YAML
// files on disk.
package fallback

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// Entry is one pre-authored fallback puzzle
type Entry struct {
	Category           models.Category `yaml:"category" json:"category"`
	Difficulty         float64         `yaml:"difficulty" json:"difficulty"`
	Question           string          `yaml:"question" json:"question"`
	Solution           string          `yaml:"solution" json:"solution"`
	Explanation        string          `yaml:"explanation" json:"explanation"`
	Hints              []string        `yaml:"hints" json:"hints,omitempty"`
	EstimatedSolveTime int             `yaml:"estimated_solve_time" json:"estimated_solve_time"`
}

// Content converts the entry into puzzle content
func (e Entry) Content() models.PuzzleContent {
	solveTime := e.EstimatedSolveTime
	if solveTime <= 0 {
		solveTime = 180
	}
	return models.PuzzleContent{
		Question:                e.Question,
		Solution:                e.Solution,
		Explanation:             e.Explanation,
		Hints:                   e.Hints,
		EstimatedSolveTime:      solveTime,
		DifficultyJustification: "Pre-authored fallback puzzle",
	}
}

// Library indexes fallback entries by category
type Library struct {
	mu      sync.RWMutex
	entries map[models.Category][]Entry
}

// NewLibrary creates a library seeded with the compiled-in defaults
func NewLibrary() *Library {
	l := &Library{entries: make(map[models.Category][]Entry)}
	for _, e := range builtins {
		l.entries[e.Category] = append(l.entries[e.Category], e)
	}
	return l
}

type libraryFile struct {
	Puzzles []Entry `yaml:"puzzles"`
}

// LoadFromDir loads additional entries from all YAML files in a directory.
// Files that fail to parse are skipped with a warning so one bad file never
// takes the library down.
func (l *Library) LoadFromDir(dir string) error {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load fallback file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("fallback library loaded", "files", loaded, "entries", l.Len())
	return nil
}

// LoadFromFile loads entries from a single YAML file
func (l *Library) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var f libraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range f.Puzzles {
		if !e.Category.Valid() {
			return fmt.Errorf("entry %d: unknown category %q", i, e.Category)
		}
		if e.Question == "" || e.Solution == "" {
			return fmt.Errorf("entry %d: question and solution are required", i)
		}
		l.entries[e.Category] = append(l.entries[e.Category], e)
	}

	return nil
}

// Nearest returns the entry for the category whose difficulty is closest to
// the target. The second return is false when the category has no entries.
func (l *Library) Nearest(category models.Category, target float64) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.entries[category]
	if len(entries) == 0 {
		return Entry{}, false
	}

	best := entries[0]
	bestDelta := math.Abs(best.Difficulty - target)
	for _, e := range entries[1:] {
		if delta := math.Abs(e.Difficulty - target); delta < bestDelta {
			best = e
			bestDelta = delta
		}
	}
	return best, true
}

// Len returns the total number of entries across categories
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, entries := range l.entries {
		n += len(entries)
	}
	return n
}

// builtins keep the engine serving puzzles even with no library directory
// configured.
var builtins = []Entry{
	{
		Category:           models.CategoryMath,
		Difficulty:         0.3,
		Question:           "If a train travels 60 miles in 45 minutes, what is its speed in miles per hour?",
		Solution:           "80 mph",
		Explanation:        "Speed = Distance / Time. Convert 45 minutes to 0.75 hours: 60 miles / 0.75 hours = 80 mph.",
		Hints:              []string{"Convert minutes to hours first", "Speed is distance divided by time"},
		EstimatedSolveTime: 180,
	},
	{
		Category:           models.CategoryMath,
		Difficulty:         0.6,
		Question:           "The sum of three consecutive even numbers is 78. What is the largest of the three?",
		Solution:           "28",
		Explanation:        "Let the numbers be n-2, n, n+2. Their sum 3n equals 78, so n is 26 and the largest is 28.",
		Hints:              []string{"Call the middle number n", "Consecutive even numbers differ by 2"},
		EstimatedSolveTime: 240,
	},
	{
		Category:           models.CategoryWord,
		Difficulty:         0.4,
		Question:           "What 7-letter word becomes longer when the third letter is removed?",
		Solution:           "lounger",
		Explanation:        "Remove the \"u\" from \"lounger\" to get \"longer\".",
		Hints:              []string{"The answer is a piece of furniture", "Focus on what remains after removal"},
		EstimatedSolveTime: 240,
	},
	{
		Category:           models.CategoryWord,
		Difficulty:         0.7,
		Question:           "Rearrange the letters of LISTEN to form another common English word.",
		Solution:           "silent",
		Explanation:        "LISTEN and SILENT are anagrams, sharing exactly the same six letters.",
		Hints:              []string{"The answer describes an absence of sound"},
		EstimatedSolveTime: 300,
	},
	{
		Category:           models.CategoryArt,
		Difficulty:         0.4,
		Question:           "Which famous painting technique creates the illusion of depth by making distant objects appear bluer and less distinct?",
		Solution:           "atmospheric perspective",
		Explanation:        "Atmospheric perspective mimics how the atmosphere affects our perception of distant objects, a technique documented since the Renaissance period.",
		Hints:              []string{"Think about how mountains look from far away", "The technique is named after the air itself"},
		EstimatedSolveTime: 240,
	},
	{
		Category:           models.CategoryArt,
		Difficulty:         0.2,
		Question:           "Which famous artist painted the ceiling of the Sistine Chapel?",
		Solution:           "Michelangelo",
		Explanation:        "Michelangelo painted the Sistine Chapel ceiling between 1508 and 1512, one of the most celebrated fresco works of the Renaissance period.",
		Hints:              []string{"He was also a renowned sculptor"},
		EstimatedSolveTime: 180,
	},
	{
		Category:           models.CategoryArt,
		Difficulty:         0.7,
		Question:           "Which printmaking technique, favored by Rembrandt, uses acid to bite lines into a metal plate?",
		Solution:           "etching",
		Explanation:        "Etching coats a metal plate in wax, draws through it with a needle, then uses acid to incise the exposed lines. Rembrandt's etchings are among the most documented prints of the Dutch Golden Age period.",
		Hints:              []string{"The name describes what the acid does", "It is an intaglio technique"},
		EstimatedSolveTime: 300,
	},
}
