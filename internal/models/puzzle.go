package models

import (
	"encoding/json"
	"time"
)

// DateKeyLayout is the format used for puzzle IDs and history dates.
const DateKeyLayout = "2006-01-02"

// Category identifies a puzzle category
type Category string

const (
	CategoryMath Category = "math"
	CategoryWord Category = "word"
	CategoryArt  Category = "art"
)

// Valid reports whether the category is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryMath, CategoryWord, CategoryArt:
		return true
	}
	return false
}

// DateKey formats a time as a puzzle ID (one puzzle per UTC day)
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// PuzzleContent is the generated content of a puzzle as produced by a
// generator (or the fallback library)
type PuzzleContent struct {
	Question                string   `json:"question"`
	Solution                string   `json:"solution"`
	Explanation             string   `json:"explanation"`
	Hints                   []string `json:"hints,omitempty"`
	MediaURL                string   `json:"media_url,omitempty"`
	EstimatedSolveTime      int      `json:"estimated_solve_time"` // seconds
	DifficultyJustification string   `json:"difficulty_justification,omitempty"`
}

// Puzzle represents a daily puzzle record, keyed by date
type Puzzle struct {
	ID               string          `json:"id"` // format: 2025-08-03
	Category         Category        `json:"category"`
	Difficulty       float64         `json:"difficulty"`
	GeneratorModel   string          `json:"generator_model"`
	Content          PuzzleContent   `json:"content"`
	ValidatorReport  json.RawMessage `json:"validator_report,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	IsActive         bool            `json:"is_active"`
	TotalAttempts    int             `json:"total_attempts"`
	SuccessfulSolves int             `json:"successful_solves"`
}

// SolveRate returns successful solves over total attempts
func (p *Puzzle) SolveRate() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.SuccessfulSolves) / float64(p.TotalAttempts)
}

// CommunitySolved reports whether at least one player solved the puzzle
func (p *Puzzle) CommunitySolved() bool {
	return p.SuccessfulSolves > 0
}

// DifficultyHistory records a per-category difficulty adjustment.
// (category, date) is unique: one adjustment per category per day.
type DifficultyHistory struct {
	Category           Category `json:"category"`
	Date               string   `json:"date"` // format: 2025-08-03
	Difficulty         float64  `json:"difficulty"`
	PreviousDifficulty float64  `json:"previous_difficulty"`
	AdjustmentReason   string   `json:"adjustment_reason"`
}

// StumpTally tracks how often a generator model stumped the community
// (a stump is a day with zero successful solves)
type StumpTally struct {
	Model            string    `json:"model"`
	Category         Category  `json:"category"`
	TotalGenerated   int       `json:"total_generated"`
	SuccessfulStumps int       `json:"successful_stumps"`
	LastUpdated      time.Time `json:"last_updated"`
}

// StumpRate returns successful stumps over total generated puzzles
func (t *StumpTally) StumpRate() float64 {
	if t.TotalGenerated == 0 {
		return 0
	}
	return float64(t.SuccessfulStumps) / float64(t.TotalGenerated)
}

// AttemptRequest records a player attempt against a puzzle
type AttemptRequest struct {
	Solved           bool `json:"solved"`
	SolveTimeSeconds int  `json:"solve_time_seconds,omitempty"`
}

// GenerateRequest triggers generation for a specific date and category
type GenerateRequest struct {
	Date     string `json:"date,omitempty"`     // defaults to today (UTC)
	Category string `json:"category,omitempty"` // defaults to the date's rotation
}

// EvaluateRequest triggers evaluation of a past puzzle
type EvaluateRequest struct {
	Date string `json:"date,omitempty"` // defaults to yesterday (UTC)
}
