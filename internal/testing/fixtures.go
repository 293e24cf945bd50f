// Package testing provides shared fixtures and mocks for package tests.
package testing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qho/internal/modules/animation"
)

// NewTestLogger returns a logger that discards everything
func NewTestLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// NewCoefficientFixtures returns named superposition states for use in tests
func NewCoefficientFixtures() map[string][]complex128 {
	return map[string][]complex128{
		"ground":  {1},
		"default": {1, 1, 1, 1},
		"first":   {0, 1},
		"complex": {1, 1i, -1, -1i},
		"mixed":   {0.5, complex(0, 0.5), 0, 0.25},
	}
}

// NewTestSampler returns a sampler configured with params
func NewTestSampler(t *testing.T, params animation.Params) *animation.Sampler {
	t.Helper()
	sampler, err := animation.NewSampler(animation.Options{}, NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, sampler.Reconfigure(params))
	return sampler
}

// NewDefaultSampler returns a sampler with four levels in equal superposition
func NewDefaultSampler(t *testing.T) *animation.Sampler {
	t.Helper()
	return NewTestSampler(t, animation.DefaultParams())
}
