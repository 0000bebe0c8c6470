// Package generator defines the puzzle generator contract and the registry
// that selects a generator model per day.
package generator

import (
	"context"
	"errors"
)

// ErrGeneration indicates a generator failed to produce usable content.
// Callers treat this as a signal to fall back, not to abort the day.
var ErrGeneration = errors.New("puzzle generation failed")

// ErrNoGenerators is returned when the registry is empty
var ErrNoGenerators = errors.New("no generators registered")

// Generator produces raw puzzle completions from a prompt
type Generator interface {
	// Name identifies the generator model, e.g. "claude4"
	Name() string

	// Generate returns the raw model completion for the prompt
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthChecker is implemented by generators that can verify upstream
// connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
