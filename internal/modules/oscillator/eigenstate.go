package oscillator

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// piQuarter is π^(−1/4), the normalization of the ground state.
var piQuarter = math.Pow(math.Pi, -0.25)

// Energy returns the eigenvalue n+½ of level n.
func Energy(n int) float64 {
	return float64(n) + 0.5
}

// Phase returns the time-evolution factor e^(−i(n+½)t) of level n.
func Phase(n int, t float64) complex128 {
	return cmplx.Exp(complex(0, -Energy(n)*t))
}

// SpatialPart returns the normalized Hermite function φₙ sampled over x.
func SpatialPart(n int, x []float64) ([]float64, error) {
	if n < 0 {
		return nil, &PreconditionViolation{Level: n}
	}
	if len(x) == 0 {
		return nil, ErrEmptyGrid
	}

	r := newRecurrence(x)
	for k := 0; k < n; k++ {
		r.advance()
	}

	out := make([]float64, len(x))
	r.emit(out)
	return checkFinite(out)
}

// HermiteFunctions returns φ₀ … φ_{levels−1} over x as the rows of a
// levels × len(x) matrix. A single pass of the recurrence fills every row.
func HermiteFunctions(levels int, x []float64) (*mat.Dense, error) {
	if levels < 1 {
		return nil, ErrNoLevels
	}
	if len(x) == 0 {
		return nil, ErrEmptyGrid
	}

	table := mat.NewDense(levels, len(x), nil)
	r := newRecurrence(x)
	for k := 0; k < levels; k++ {
		if k > 0 {
			r.advance()
		}
		row := table.RawRowView(k)
		r.emit(row)
		if _, err := checkFinite(row); err != nil {
			return nil, fmt.Errorf("level %d: %w", k, err)
		}
	}

	return table, nil
}

// Rescaling bounds for the recurrence. A value past rescaleAbove is
// multiplied by rescaleBy and rescaleLog is added to its sample exponent.
const (
	rescaleAbove = 1e150
	rescaleBy    = 1e-150
)

var rescaleLog = 150 * math.Ln10

// recurrence runs φₖ₊₁ = √(2/(k+1))·x·φₖ − √(k/(k+1))·φₖ₋₁ on Gaussian-free
// values. Sample i of φₖ is cur[i]·exp(scale[i] − x²/2). Keeping the Gaussian
// out of the stored values stops the seed from underflowing far from the
// origin, where the polynomial factor would otherwise restore it.
type recurrence struct {
	x     []float64
	prev  []float64
	cur   []float64
	next  []float64
	scale []float64
	k     int
}

func newRecurrence(x []float64) *recurrence {
	r := &recurrence{
		x:     x,
		prev:  make([]float64, len(x)),
		cur:   make([]float64, len(x)),
		next:  make([]float64, len(x)),
		scale: make([]float64, len(x)),
	}
	for i := range r.cur {
		r.cur[i] = piQuarter
	}
	return r
}

// advance moves from φₖ to φₖ₊₁.
func (r *recurrence) advance() {
	hermiteStep(r.next, r.cur, r.prev, r.x, r.k)
	for i, v := range r.next {
		if math.Abs(v) > rescaleAbove {
			r.next[i] *= rescaleBy
			r.cur[i] *= rescaleBy
			r.scale[i] += rescaleLog
		}
	}
	r.prev, r.cur, r.next = r.cur, r.next, r.prev
	r.k++
}

// emit writes φₖ into dst. Samples whose true value is below the smallest
// float64 come out as zero.
func (r *recurrence) emit(dst []float64) {
	for i, xi := range r.x {
		v := r.cur[i]
		if v == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = v * math.Exp(r.scale[i]-xi*xi/2)
	}
}

// hermiteStep writes φₖ₊₁ into dst from φₖ (cur) and φₖ₋₁ (prev).
// At k = 0 the prev term vanishes, giving φ₁ = √2·x·φ₀.
func hermiteStep(dst, cur, prev, x []float64, k int) {
	a := math.Sqrt(2 / float64(k+1))
	b := math.Sqrt(float64(k) / float64(k+1))
	for i, xi := range x {
		dst[i] = a*xi*cur[i] - b*prev[i]
	}
}

// Eigenstate returns ψₙ(x, t) = φₙ(x)·e^(−i(n+½)t) over x.
// A negative n yields a *PreconditionViolation.
func Eigenstate(n int, x []float64, t float64) ([]complex128, error) {
	phi, err := SpatialPart(n, x)
	if err != nil {
		return nil, err
	}

	phase := Phase(n, t)
	out := make([]complex128, len(phi))
	for i, v := range phi {
		out[i] = complex(v, 0) * phase
	}
	return out, nil
}

// MustEigenstate is Eigenstate for callers that have already validated n and
// the grid. It panics with the error Eigenstate would have returned.
func MustEigenstate(n int, x []float64, t float64) []complex128 {
	out, err := Eigenstate(n, x, t)
	if err != nil {
		panic(err)
	}
	return out
}

func checkFinite(v []float64) ([]float64, error) {
	if floats.HasNaN(v) {
		return nil, ErrNonFinite
	}
	for _, f := range v {
		if math.IsInf(f, 0) {
			return nil, ErrNonFinite
		}
	}
	return v, nil
}
