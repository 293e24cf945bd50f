package animation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLevelCount   = errors.New("animation: level count must be between 1 and the level limit")
	ErrInvalidXProportion  = errors.New("animation: x proportion must be positive and finite")
	ErrInvalidYBound       = errors.New("animation: superposition y bound must be positive and finite")
	ErrInvalidGridStep     = errors.New("animation: grid step must be positive and finite")
	ErrGridTooLarge        = errors.New("animation: levels times grid samples exceeds the basis limit")
	ErrInvalidCoefficients = errors.New("animation: invalid superposition coefficients")
	ErrInvalidFrame        = errors.New("animation: frame index must be non-negative")
	ErrInvalidLayer        = errors.New("animation: unknown layer")
	ErrNotConfigured       = errors.New("animation: sampler has not been configured")
)

// ValidationError reports malformed input to a reconfigure, update or
// generate call. The state it was meant to change is left untouched.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(field string, value interface{}, err error) *ValidationError {
	return &ValidationError{Field: field, Value: fmt.Sprint(value), Err: err}
}
