// Package animation turns oscillator eigenstates into animation frames: it
// owns the spatial grid, the cached Hermite table, the superposition
// coefficients, layer visibility and the frame clock, and drives a render
// sink at a fixed cadence.
package animation

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/qho/internal/modules/oscillator"
)

// DefaultGridStep is the spacing of the spatial grid.
const DefaultGridStep = 0.01

// Params is the full plot configuration applied by Reconfigure.
type Params struct {
	LevelCount          int          `json:"level_count"`
	XProportion         float64      `json:"x_proportion"`
	SuperpositionYBound float64      `json:"superposition_y_bound"`
	Coefficients        []complex128 `json:"-"`
}

// DefaultParams returns four levels in an equal superposition.
func DefaultParams() Params {
	return Params{
		LevelCount:          4,
		XProportion:         1,
		SuperpositionYBound: 2,
		Coefficients:        []complex128{1, 1, 1, 1},
	}
}

func (p Params) clone() Params {
	p.Coefficients = append([]complex128(nil), p.Coefficients...)
	return p
}

// Options configure a Sampler.
type Options struct {
	GridStep       float64
	FramesPerCycle int
}

// Snapshot is a consistent copy of the sampler state.
type Snapshot struct {
	Configured     bool        `json:"configured"`
	Params         Params      `json:"params"`
	Coefficients   string      `json:"coefficients"`
	Layers         Layers      `json:"layers"`
	Frame          int         `json:"frame"`
	FramesPerCycle int         `json:"frames_per_cycle"`
	TimeStep       float64     `json:"time_step"`
	GridStep       float64     `json:"grid_step"`
	GridSamples    int         `json:"grid_samples"`
	Bounds         Bounds      `json:"bounds"`
	Generation     uint64      `json:"generation"`
	Observables    Observables `json:"observables"`
}

// Sampler computes animation frames. All methods are safe for concurrent
// use; each frame is computed entirely from one consistent state.
type Sampler struct {
	mu  sync.Mutex
	log zerolog.Logger

	step  float64
	clock Clock

	configured bool
	params     Params
	grid       *oscillator.Grid
	basis      *mat.Dense // φₙ(x), one row per level, at least LevelCount rows
	bounds     Bounds

	levels []TracePair
	super  TracePair
	static StaticTraces

	layers      Layers
	staticDirty bool
	generation  uint64
}

// NewSampler returns an unconfigured sampler with every layer visible.
func NewSampler(opts Options, log zerolog.Logger) (*Sampler, error) {
	step := opts.GridStep
	if step == 0 {
		step = DefaultGridStep
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, invalid("grid step", step, ErrInvalidGridStep)
	}

	return &Sampler{
		log:    log.With().Str("component", "sampler").Logger(),
		step:   step,
		clock:  NewClock(opts.FramesPerCycle),
		layers: AllLayers(),
	}, nil
}

// Reconfigure rebuilds the grid, the Hermite table, every trace buffer and
// the static traces, then rewinds the clock. Invalid parameters return a
// *ValidationError and leave the previous configuration in place.
func (s *Sampler) Reconfigure(p Params) error {
	if p.LevelCount < 1 || p.LevelCount > MaxLevels {
		return invalid("level count", p.LevelCount, ErrInvalidLevelCount)
	}
	if !(p.XProportion > 0) || math.IsInf(p.XProportion, 0) {
		return invalid("x proportion", p.XProportion, ErrInvalidXProportion)
	}
	if !(p.SuperpositionYBound > 0) || math.IsInf(p.SuperpositionYBound, 0) {
		return invalid("superposition y bound", p.SuperpositionYBound, ErrInvalidYBound)
	}
	if err := ValidateCoefficients(p.Coefficients); err != nil {
		return err
	}

	radius := oscillator.GridRadius(p.LevelCount, p.XProportion)
	grid, err := oscillator.NewGrid(radius, s.step)
	if err != nil {
		return invalid("x proportion", p.XProportion, err)
	}

	rows := p.LevelCount
	if len(p.Coefficients) > rows {
		rows = len(p.Coefficients)
	}
	if err := checkBasisSize(rows, grid.Len()); err != nil {
		return err
	}
	basis, err := oscillator.HermiteFunctions(rows, grid.X)
	if err != nil {
		return fmt.Errorf("failed to evaluate hermite functions: %w", err)
	}

	n := grid.Len()
	levels := make([]TracePair, p.LevelCount)
	for i := range levels {
		levels[i] = TracePair{Real: make([]float64, n), Imag: make([]float64, n)}
	}

	parabola := make([]float64, n)
	floats.MulTo(parabola, grid.X, grid.X)
	heights := make([]float64, p.LevelCount)
	for i := range heights {
		heights[i] = oscillator.Energy(i)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = p.clone()
	s.grid = grid
	s.basis = basis
	s.levels = levels
	s.super = TracePair{Real: make([]float64, n), Imag: make([]float64, n)}
	s.static = StaticTraces{Parabola: parabola, EnergyLevels: heights}
	s.bounds = Bounds{
		XMin:      -radius,
		XMax:      radius,
		YMin:      0,
		YMax:      float64(p.LevelCount),
		SuperYMin: -p.SuperpositionYBound,
		SuperYMax: p.SuperpositionYBound,
	}
	s.configured = true
	s.staticDirty = true
	s.generation++
	s.clock.Reset()

	s.log.Info().
		Int("levels", p.LevelCount).
		Float64("x_proportion", p.XProportion).
		Float64("super_y_bound", p.SuperpositionYBound).
		Int("grid_samples", n).
		Int("coefficients", len(p.Coefficients)).
		Uint64("generation", s.generation).
		Msg("Sampler reconfigured")

	return nil
}

func checkBasisSize(rows, samples int) error {
	if rows*samples > MaxBasisCells {
		return invalid("level count", rows, fmt.Errorf("%w: %d × %d samples > %d",
			ErrGridTooLarge, rows, samples, MaxBasisCells))
	}
	return nil
}

// UpdateCoefficients replaces the superposition state and rewinds the clock.
// The grid, the trace buffers and the static layer are kept. Coefficients
// past the cached Hermite table extend it first, so a failure leaves the old
// state in place.
func (s *Sampler) UpdateCoefficients(c []complex128) error {
	if err := ValidateCoefficients(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return ErrNotConfigured
	}

	if rows, _ := s.basis.Dims(); len(c) > rows {
		if err := checkBasisSize(len(c), s.grid.Len()); err != nil {
			return err
		}
		basis, err := oscillator.HermiteFunctions(len(c), s.grid.X)
		if err != nil {
			return fmt.Errorf("failed to extend hermite functions: %w", err)
		}
		s.basis = basis
	}

	s.params.Coefficients = append([]complex128(nil), c...)
	s.clock.Reset()

	s.log.Debug().
		Str("coefficients", FormatCoefficients(c)).
		Msg("Superposition updated")

	return nil
}

// ToggleLayer switches one layer. Real and imaginary only change which
// buffers frames carry, so they cost a clock reset. Parabola and energy
// levels are drawn once per redraw, so they mark the static layer for
// re-issue and ask for a driver restart.
func (s *Sampler) ToggleLayer(layer Layer, visible bool) Refresh {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.layers.set(layer, visible) {
		return RefreshNone
	}

	s.clock.Reset()
	refresh := RefreshClock
	if layer.Static() {
		s.staticDirty = true
		refresh = RefreshRedraw
	}

	s.log.Debug().
		Str("layer", layer.String()).
		Bool("visible", visible).
		Str("refresh", refresh.String()).
		Msg("Layer toggled")

	return refresh
}

// Layers returns the current visibility.
func (s *Sampler) Layers() Layers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers
}

// ResetClock rewinds the animation to frame 0.
func (s *Sampler) ResetClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Reset()
}

// SampleFrame computes frame t without touching the clock or the redraw
// state. Indices past the end of the loop wrap.
func (s *Sampler) SampleFrame(t int) (*Frame, error) {
	if t < 0 {
		return nil, invalid("frame", t, ErrInvalidFrame)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sampleLocked(s.clock.Wrap(t), s.staticDirty)
}

// NextFrame computes the clock's current frame, advances the clock and
// consumes the pending redraw.
func (s *Sampler) NextFrame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return nil, ErrNotConfigured
	}

	frame, err := s.sampleLocked(s.clock.Frame(), s.staticDirty)
	if err != nil {
		return nil, err
	}
	s.clock.Advance()
	s.staticDirty = false
	return frame, nil
}

func (s *Sampler) sampleLocked(t int, redraw bool) (*Frame, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	tm := s.clock.Time(t)
	n := s.grid.Len()

	for lvl := range s.levels {
		phase := oscillator.Phase(lvl, tm)
		offset := oscillator.Energy(lvl)
		phi := s.basis.RawRowView(lvl)
		re, im := s.levels[lvl].Real, s.levels[lvl].Imag
		pr, pi := real(phase), imag(phase)
		for i, v := range phi {
			re[i] = v*pr + offset
			im[i] = v*pi + offset
		}
	}

	// ψ(x) = Σ cₙ e^(−i(n+½)t) φₙ(x): the real and imaginary parts are Φᵀ
	// applied to the real and imaginary weights.
	coeffs := s.params.Coefficients
	wRe := mat.NewVecDense(len(coeffs), nil)
	wIm := mat.NewVecDense(len(coeffs), nil)
	for lvl, c := range coeffs {
		w := c * oscillator.Phase(lvl, tm)
		wRe.SetVec(lvl, real(w))
		wIm.SetVec(lvl, imag(w))
	}
	phi := s.basis.Slice(0, len(coeffs), 0, n).(*mat.Dense)
	mat.NewVecDense(n, s.super.Real).MulVec(phi.T(), wRe)
	mat.NewVecDense(n, s.super.Imag).MulVec(phi.T(), wIm)

	if err := s.checkFiniteLocked(); err != nil {
		return nil, fmt.Errorf("frame %d: %w", t, err)
	}

	frame := &Frame{
		Index:      t,
		Time:       tm,
		Generation: s.generation,
		X:          append([]float64(nil), s.grid.X...),
		Bounds:     s.bounds,
		Layers:     s.layers,
		Redraw:     redraw,
	}

	if s.layers.Real || s.layers.Imaginary {
		frame.Levels = make([]LevelTrace, len(s.levels))
		for lvl, pair := range s.levels {
			frame.Levels[lvl] = LevelTrace{Level: lvl, TracePair: s.visiblePair(pair)}
		}
	}
	frame.Superposition = s.visiblePair(s.super)

	if s.layers.Parabola || s.layers.EnergyLevels {
		static := &StaticTraces{}
		if s.layers.Parabola {
			static.Parabola = append([]float64(nil), s.static.Parabola...)
		}
		if s.layers.EnergyLevels {
			static.EnergyLevels = append([]float64(nil), s.static.EnergyLevels...)
		}
		frame.Static = static
	}

	return frame, nil
}

func (s *Sampler) visiblePair(p TracePair) TracePair {
	var out TracePair
	if s.layers.Real {
		out.Real = append([]float64(nil), p.Real...)
	}
	if s.layers.Imaginary {
		out.Imag = append([]float64(nil), p.Imag...)
	}
	return out
}

func (s *Sampler) checkFiniteLocked() error {
	for lvl, pair := range s.levels {
		if !allFinite(pair.Real) || !allFinite(pair.Imag) {
			return fmt.Errorf("level %d: %w", lvl, oscillator.ErrNonFinite)
		}
	}
	if !allFinite(s.super.Real) || !allFinite(s.super.Imag) {
		return fmt.Errorf("superposition: %w", oscillator.ErrNonFinite)
	}
	return nil
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Observables returns the norm and energy statistics of the current state.
func (s *Sampler) Observables() Observables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeObservables(s.params.Coefficients)
}

// Snapshot returns a consistent copy of the configuration and clock.
func (s *Sampler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Configured:     s.configured,
		Params:         s.params.clone(),
		Coefficients:   FormatCoefficients(s.params.Coefficients),
		Layers:         s.layers,
		Frame:          s.clock.Frame(),
		FramesPerCycle: s.clock.Frames(),
		TimeStep:       s.clock.Step(),
		GridStep:       s.step,
		Bounds:         s.bounds,
		Generation:     s.generation,
		Observables:    ComputeObservables(s.params.Coefficients),
	}
	if s.grid != nil {
		snap.GridSamples = s.grid.Len()
	}
	return snap
}
