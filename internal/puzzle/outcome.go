// Package puzzle orchestrates the daily generation pipeline: calibrate,
// prompt, generate, validate, persist, plus the nightly difficulty feedback
// loop.
package puzzle

import (
	"time"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
	"github.com/dailypuzzle/puzzle-engine/internal/validation"
)

// State names the pipeline stages
type State string

const (
	StateIdle        State = "idle"
	StateCalibrating State = "calibrating"
	StatePrompting   State = "prompting"
	StateGenerating  State = "generating"
	StateValidating  State = "validating"
	StateAccepted    State = "accepted"
	StateFallback    State = "fallback"
	StateRejected    State = "rejected"
)

// OutcomeStatus distinguishes the four ways a generation run can end.
//
// Generation failures fall back silently to a pre-authored puzzle, while a
// low validation score rejects outright. The asymmetry is a deliberate
// policy: callers can tell the paths apart through this type.
type OutcomeStatus string

const (
	StatusAccepted             OutcomeStatus = "accepted"
	StatusAcceptedWithWarnings OutcomeStatus = "accepted_with_warnings"
	StatusFallback             OutcomeStatus = "fallback"
	StatusRejected             OutcomeStatus = "rejected"
)

// Outcome is the result of one generation run
type Outcome struct {
	RunID  string             `json:"run_id"`
	Status OutcomeStatus      `json:"status"`
	Puzzle *models.Puzzle     `json:"puzzle,omitempty"`
	Issues []validation.Issue `json:"issues,omitempty"`
	Score  float64            `json:"score"`
}

// Event is one pipeline state transition, published to the operator feed
type Event struct {
	RunID     string          `json:"run_id"`
	Date      string          `json:"date"`
	Category  models.Category `json:"category"`
	State     State           `json:"state"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventSink receives pipeline events. Implementations must not block.
type EventSink interface {
	Publish(event Event)
}
