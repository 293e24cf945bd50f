package oscillator

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite indicates a sample evaluated to NaN or ±Inf.
	ErrNonFinite = errors.New("oscillator: non-finite sample")
	// ErrEmptyGrid indicates an evaluation over zero sample points.
	ErrEmptyGrid = errors.New("oscillator: spatial grid is empty")
	// ErrNoLevels indicates a request for fewer than one energy level.
	ErrNoLevels = errors.New("oscillator: at least one energy level is required")
	// ErrInvalidRadius indicates a non-positive or non-finite grid half-width.
	ErrInvalidRadius = errors.New("oscillator: grid radius must be positive and finite")
	// ErrInvalidStep indicates a non-positive or non-finite grid step.
	ErrInvalidStep = errors.New("oscillator: grid step must be positive and finite")
	// ErrGridTooLarge indicates the requested grid exceeds MaxGridSamples.
	ErrGridTooLarge = errors.New("oscillator: grid has too many samples")
)

// PreconditionViolation reports an energy level outside n ≥ 0.
// It marks a programming error in the caller, not bad user input.
type PreconditionViolation struct {
	Level int
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("oscillator: energy level must be non-negative, got %d", e.Level)
}
