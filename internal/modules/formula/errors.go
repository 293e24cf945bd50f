package formula

import (
	"errors"
	"fmt"
)

var (
	ErrParse           = errors.New("formula: parse error")
	ErrUnknownSymbol   = errors.New("formula: unknown symbol")
	ErrEvaluation      = errors.New("formula: evaluation error")
	ErrInvalidRange    = errors.New("formula: invalid range")
	ErrInvalidVariable = errors.New("formula: invalid variable name")
)

// ValidationError is returned for every rejected Generate call. No partial
// sequence accompanies it.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
