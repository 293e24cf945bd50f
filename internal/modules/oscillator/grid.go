package oscillator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxGridSamples bounds the number of points a single grid may hold.
const MaxGridSamples = 1 << 20

// Grid is an ordered set of sample coordinates over [−Radius, Radius).
type Grid struct {
	X      []float64
	Radius float64
	Step   float64
}

// GridRadius returns the half-width √levels·proportion used for a plot of
// the given level count.
func GridRadius(levels int, proportion float64) float64 {
	return math.Sqrt(float64(levels)) * proportion
}

// NewGrid samples [−radius, radius) every step, starting at −radius.
// The number of samples is ceil(2·radius/step), the same count a half-open
// arange produces; a tolerance of 1e−9 steps absorbs representation error so
// the last sample never lands on +radius.
func NewGrid(radius, step float64) (*Grid, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}

	count := math.Ceil(2*radius/step - 1e-9)
	if count > MaxGridSamples {
		return nil, fmt.Errorf("%w: %.0f > %d", ErrGridTooLarge, count, MaxGridSamples)
	}
	n := int(count)
	if n < 1 {
		n = 1
	}

	x := make([]float64, n)
	if n == 1 {
		x[0] = -radius
	} else {
		floats.Span(x, -radius, -radius+float64(n-1)*step)
	}

	return &Grid{X: x, Radius: radius, Step: step}, nil
}

// Len returns the number of samples.
func (g *Grid) Len() int {
	return len(g.X)
}

// Min and Max return the first and last sample.
func (g *Grid) Min() float64 { return g.X[0] }
func (g *Grid) Max() float64 { return g.X[len(g.X)-1] }
