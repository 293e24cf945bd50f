package animation

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/aristath/qho/internal/modules/oscillator"
)

// MaxLevels bounds both the level count and the coefficient count.
const MaxLevels = 1000

// MaxBasisCells bounds the Hermite table: max(levels, coefficients) rows
// times grid samples columns.
const MaxBasisCells = 1 << 24

// ParseCoefficients reads the comma-separated superposition field.
// Tokens may be real ("1", "-0.5e-1") or complex ("1+2i", "(1-1j)", "2j").
// The first bad token rejects the whole input.
func ParseCoefficients(text string) ([]complex128, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("coefficients", text, fmt.Errorf("%w: empty input", ErrInvalidCoefficients))
	}

	tokens := strings.Split(text, ",")
	out := make([]complex128, 0, len(tokens))
	for i, tok := range tokens {
		c, err := parseCoefficient(tok)
		if err != nil {
			return nil, &ValidationError{
				Field: fmt.Sprintf("coefficient %d", i),
				Value: strings.TrimSpace(tok),
				Err:   fmt.Errorf("%w: %v", ErrInvalidCoefficients, err),
			}
		}
		out = append(out, c)
	}

	if err := ValidateCoefficients(out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseCoefficient(tok string) (complex128, error) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return 0, fmt.Errorf("empty token")
	}
	s = strings.NewReplacer("j", "i", "J", "i", " ", "").Replace(s)

	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return c, nil
}

// ValidateCoefficients checks a coefficient sequence before it is applied.
func ValidateCoefficients(c []complex128) error {
	if len(c) == 0 {
		return invalid("coefficients", "", fmt.Errorf("%w: at least one coefficient is required", ErrInvalidCoefficients))
	}
	if len(c) > MaxLevels {
		return invalid("coefficients", len(c), fmt.Errorf("%w: more than %d coefficients", ErrInvalidCoefficients, MaxLevels))
	}
	for i, v := range c {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return &ValidationError{
				Field: fmt.Sprintf("coefficient %d", i),
				Value: strconv.FormatComplex(v, 'g', -1, 128),
				Err:   fmt.Errorf("%w: not finite", ErrInvalidCoefficients),
			}
		}
	}
	return nil
}

// FormatCoefficients renders a sequence back into the field's text form.
// Real values print without an imaginary part.
func FormatCoefficients(c []complex128) string {
	parts := make([]string, len(c))
	for i, v := range c {
		if imag(v) == 0 {
			parts[i] = strconv.FormatFloat(real(v), 'g', -1, 64)
		} else {
			parts[i] = strconv.FormatComplex(v, 'g', -1, 128)
		}
	}
	return strings.Join(parts, ",")
}

// RealCoefficients lifts a real sequence, such as generated formula output,
// into coefficients.
func RealCoefficients(values []float64) []complex128 {
	out := make([]complex128, len(values))
	for i, v := range values {
		out[i] = complex(v, 0)
	}
	return out
}

// Observables summarizes a coefficient sequence.
type Observables struct {
	// Norm is ⟨ψ|ψ⟩ = Σ|cₙ|², or zero when it does not fit in a float64.
	Norm float64 `json:"norm"`
	// Overflow is set when Norm overflowed.
	Overflow bool `json:"overflow,omitempty"`
	// MeanEnergy is Σ|cₙ|²(n+½) / Σ|cₙ|²; zero when the norm is zero.
	MeanEnergy float64 `json:"mean_energy"`
	// Weights are the level populations |cₙ|²/Σ|cₙ|².
	Weights []float64 `json:"weights"`
}

// ComputeObservables returns the norm, mean energy and populations of c.
// Populations are computed on |cₙ|/max|c| so huge coefficients still give
// finite weights.
func ComputeObservables(c []complex128) Observables {
	obs := Observables{Weights: make([]float64, len(c))}

	var scale float64
	for _, v := range c {
		scale = math.Max(scale, cmplx.Abs(v))
	}
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return obs
	}

	var sum, energy float64
	for n, v := range c {
		a := cmplx.Abs(v) / scale
		p := a * a
		obs.Weights[n] = p
		sum += p
		energy += p * oscillator.Energy(n)
	}
	obs.MeanEnergy = energy / sum
	for n := range obs.Weights {
		obs.Weights[n] /= sum
	}

	obs.Norm = sum * scale * scale
	if math.IsInf(obs.Norm, 0) {
		obs.Norm = 0
		obs.Overflow = true
	}
	return obs
}
