package animation

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qho/internal/modules/oscillator"
)

func newTestSampler(t *testing.T) *Sampler {
	t.Helper()
	s, err := NewSampler(Options{}, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	return s
}

func configuredSampler(t *testing.T, p Params) *Sampler {
	t.Helper()
	s := newTestSampler(t)
	require.NoError(t, s.Reconfigure(p))
	return s
}

func TestNewSampler_InvalidGridStep(t *testing.T) {
	for _, step := range []float64{-0.01, math.Inf(1), math.NaN()} {
		_, err := NewSampler(Options{GridStep: step}, zerolog.New(nil).Level(zerolog.Disabled))
		assert.ErrorIs(t, err, ErrInvalidGridStep)
	}
}

func TestSampler_Unconfigured(t *testing.T) {
	s := newTestSampler(t)

	_, err := s.SampleFrame(0)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = s.NextFrame()
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = s.UpdateCoefficients([]complex128{1})
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, s.Snapshot().Configured)
}

func TestSampler_DefaultConfiguration(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	frame, err := s.SampleFrame(0)
	require.NoError(t, err)

	assert.Len(t, frame.X, 400)
	assert.InDelta(t, -2.0, frame.X[0], 1e-12)
	assert.Less(t, frame.X[len(frame.X)-1], 2.0)
	assert.Len(t, frame.Levels, 4)
	assert.Len(t, frame.Superposition.Real, 400)
	assert.Len(t, frame.Superposition.Imag, 400)

	assert.Equal(t, Bounds{XMin: -2, XMax: 2, YMin: 0, YMax: 4, SuperYMin: -2, SuperYMax: 2}, frame.Bounds)

	require.NotNil(t, frame.Static)
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, frame.Static.EnergyLevels)
	for i, x := range frame.X {
		assert.InDelta(t, x*x, frame.Static.Parabola[i], 1e-12)
	}

	snap := s.Snapshot()
	assert.True(t, snap.Configured)
	assert.Equal(t, 400, snap.GridSamples)
	assert.Equal(t, "1,1,1,1", snap.Coefficients)
	assert.Equal(t, DefaultFramesPerCycle, snap.FramesPerCycle)
}

func TestSampler_LevelTracesAreOffsetEigenstates(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	const frameIndex = 7
	frame, err := s.SampleFrame(frameIndex)
	require.NoError(t, err)

	tm := float64(frameIndex) * CyclePeriod / DefaultFramesPerCycle
	assert.InDelta(t, tm, frame.Time, 1e-12)

	for lvl, trace := range frame.Levels {
		assert.Equal(t, lvl, trace.Level)
		want, err := oscillator.Eigenstate(lvl, frame.X, tm)
		require.NoError(t, err)
		offset := float64(lvl) + 0.5
		for i := range want {
			assert.InDelta(t, real(want[i])+offset, trace.Real[i], 1e-12)
			assert.InDelta(t, imag(want[i])+offset, trace.Imag[i], 1e-12)
		}
	}
}

func TestSampler_SingleCoefficientReducesToScaledEigenstate(t *testing.T) {
	c0 := complex(0.6, -0.8)
	p := DefaultParams()
	p.LevelCount = 1
	p.Coefficients = []complex128{c0}
	s := configuredSampler(t, p)

	frame, err := s.SampleFrame(11)
	require.NoError(t, err)

	want, err := oscillator.Eigenstate(0, frame.X, frame.Time)
	require.NoError(t, err)
	for i := range want {
		v := c0 * want[i]
		assert.InDelta(t, real(v), frame.Superposition.Real[i], 1e-12)
		assert.InDelta(t, imag(v), frame.Superposition.Imag[i], 1e-12)
	}
}

func TestSampler_CoefficientsBeyondLevelCountAreEvaluated(t *testing.T) {
	p := DefaultParams()
	p.LevelCount = 2
	p.Coefficients = []complex128{1, 0, 2i}
	s := configuredSampler(t, p)

	frame, err := s.SampleFrame(3)
	require.NoError(t, err)
	assert.Len(t, frame.Levels, 2)

	want := make([]complex128, len(frame.X))
	for lvl, c := range p.Coefficients {
		e, err := oscillator.Eigenstate(lvl, frame.X, frame.Time)
		require.NoError(t, err)
		for i := range e {
			want[i] += c * e[i]
		}
	}
	for i := range want {
		assert.InDelta(t, real(want[i]), frame.Superposition.Real[i], 1e-12)
		assert.InDelta(t, imag(want[i]), frame.Superposition.Imag[i], 1e-12)
	}
}

func TestSampler_ReconfigureRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		target error
	}{
		{"zero levels", func(p *Params) { p.LevelCount = 0 }, ErrInvalidLevelCount},
		{"too many levels", func(p *Params) { p.LevelCount = MaxLevels + 1 }, ErrInvalidLevelCount},
		{"zero x proportion", func(p *Params) { p.XProportion = 0 }, ErrInvalidXProportion},
		{"nan x proportion", func(p *Params) { p.XProportion = math.NaN() }, ErrInvalidXProportion},
		{"negative y bound", func(p *Params) { p.SuperpositionYBound = -1 }, ErrInvalidYBound},
		{"empty coefficients", func(p *Params) { p.Coefficients = nil }, ErrInvalidCoefficients},
		{"infinite coefficient", func(p *Params) { p.Coefficients = []complex128{complex(math.Inf(1), 0)} }, ErrInvalidCoefficients},
		{"basis too large", func(p *Params) { p.LevelCount = MaxLevels; p.XProportion = 100 }, ErrGridTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := configuredSampler(t, DefaultParams())
			before := s.Snapshot()

			p := DefaultParams()
			tt.mutate(&p)
			err := s.Reconfigure(p)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsValidation(err))
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestSampler_ReconfigureRebuildsEverything(t *testing.T) {
	s := configuredSampler(t, DefaultParams())
	_, err := s.NextFrame()
	require.NoError(t, err)
	gen := s.Snapshot().Generation

	p := Params{LevelCount: 9, XProportion: 2, SuperpositionYBound: 0.5, Coefficients: []complex128{1}}
	require.NoError(t, s.Reconfigure(p))

	snap := s.Snapshot()
	assert.Equal(t, gen+1, snap.Generation)
	assert.Equal(t, 0, snap.Frame)
	assert.Equal(t, 1200, snap.GridSamples)

	frame, err := s.NextFrame()
	require.NoError(t, err)
	assert.True(t, frame.Redraw)
	assert.Len(t, frame.Levels, 9)
	assert.Equal(t, Bounds{XMin: -6, XMax: 6, YMin: 0, YMax: 9, SuperYMin: -0.5, SuperYMax: 0.5}, frame.Bounds)
}

func TestSampler_MalformedUpdatePreservesState(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	before, err := s.SampleFrame(5)
	require.NoError(t, err)

	bad := [][]complex128{
		nil,
		{1, complex(math.NaN(), 0)},
		{complex(0, math.Inf(-1))},
		make([]complex128, MaxLevels+1),
	}
	for _, c := range bad {
		err := s.UpdateCoefficients(c)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.ErrorIs(t, err, ErrInvalidCoefficients)
	}

	after, err := s.SampleFrame(5)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "1,1,1,1", s.Snapshot().Coefficients)
}

func TestSampler_UpdateCoefficientsRejectsOversizedBasis(t *testing.T) {
	// One level at x proportion 5000 spans about a million samples.
	s := configuredSampler(t, Params{LevelCount: 1, XProportion: 5000, SuperpositionYBound: 1, Coefficients: []complex128{1}})
	samples := s.Snapshot().GridSamples
	require.Greater(t, samples, MaxBasisCells/MaxLevels)

	c := make([]complex128, MaxBasisCells/samples+1)
	c[0] = 1
	err := s.UpdateCoefficients(c)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, ErrGridTooLarge)
	assert.Equal(t, "1", s.Snapshot().Coefficients)
}

func TestSampler_UpdateCoefficients(t *testing.T) {
	s := configuredSampler(t, DefaultParams())
	_, err := s.NextFrame()
	require.NoError(t, err)
	gen := s.Snapshot().Generation

	c := []complex128{0, 0, 0, 0, 0, 1}
	require.NoError(t, s.UpdateCoefficients(c))

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Frame)
	assert.Equal(t, gen, snap.Generation)
	assert.Equal(t, "0,0,0,0,0,1", snap.Coefficients)

	frame, err := s.NextFrame()
	require.NoError(t, err)
	assert.False(t, frame.Redraw)
	assert.Len(t, frame.Levels, 4)

	want, err := oscillator.Eigenstate(5, frame.X, frame.Time)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, real(want[i]), frame.Superposition.Real[i], 1e-12)
	}
}

func TestSampler_SampleFrameIndices(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	_, err := s.SampleFrame(-1)
	assert.ErrorIs(t, err, ErrInvalidFrame)
	assert.True(t, IsValidation(err))

	first, err := s.SampleFrame(0)
	require.NoError(t, err)
	wrapped, err := s.SampleFrame(DefaultFramesPerCycle)
	require.NoError(t, err)
	assert.Equal(t, first, wrapped)

	assert.Equal(t, 0, s.Snapshot().Frame, "SampleFrame must not move the clock")
}

func TestSampler_LoopIsSeamless(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	last, err := s.SampleFrame(DefaultFramesPerCycle - 1)
	require.NoError(t, err)

	// One more step from the last frame lands on frame 0.
	x := last.X
	tm := last.Time + CyclePeriod/DefaultFramesPerCycle
	first, err := s.SampleFrame(0)
	require.NoError(t, err)
	for lvl := 0; lvl < 4; lvl++ {
		e, err := oscillator.Eigenstate(lvl, x, tm)
		require.NoError(t, err)
		offset := float64(lvl) + 0.5
		for i := range e {
			assert.InDelta(t, first.Levels[lvl].Real[i], real(e[i])+offset, 1e-9)
		}
	}
}

func TestSampler_NextFrameAdvancesAndConsumesRedraw(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	f0, err := s.NextFrame()
	require.NoError(t, err)
	f1, err := s.NextFrame()
	require.NoError(t, err)
	f2, err := s.NextFrame()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, []int{f0.Index, f1.Index, f2.Index})
	assert.True(t, f0.Redraw)
	assert.False(t, f1.Redraw)
	assert.False(t, f2.Redraw)

	s.ResetClock()
	f, err := s.NextFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, f.Index)
	assert.False(t, f.Redraw)
}

func TestSampler_ClockWraps(t *testing.T) {
	s, err := NewSampler(Options{FramesPerCycle: 3}, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	require.NoError(t, s.Reconfigure(DefaultParams()))

	var got []int
	for i := 0; i < 7; i++ {
		f, err := s.NextFrame()
		require.NoError(t, err)
		got = append(got, f.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestSampler_ToggleRealRestoresIdenticalFrames(t *testing.T) {
	s := configuredSampler(t, DefaultParams())

	before, err := s.SampleFrame(4)
	require.NoError(t, err)

	assert.Equal(t, RefreshClock, s.ToggleLayer(LayerReal, false))
	hidden, err := s.SampleFrame(4)
	require.NoError(t, err)
	assert.Nil(t, hidden.Superposition.Real)
	assert.NotNil(t, hidden.Superposition.Imag)
	for _, lvl := range hidden.Levels {
		assert.Nil(t, lvl.Real)
		assert.NotNil(t, lvl.Imag)
	}

	assert.Equal(t, RefreshClock, s.ToggleLayer(LayerReal, true))
	after, err := s.SampleFrame(4)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSampler_BothComplexPartsHidden(t *testing.T) {
	s := configuredSampler(t, DefaultParams())
	s.ToggleLayer(LayerReal, false)
	s.ToggleLayer(LayerImaginary, false)

	frame, err := s.SampleFrame(0)
	require.NoError(t, err)
	assert.Nil(t, frame.Levels)
	assert.Nil(t, frame.Superposition.Real)
	assert.Nil(t, frame.Superposition.Imag)
	assert.NotNil(t, frame.Static)
}

func TestSampler_StaticToggleRequestsRedraw(t *testing.T) {
	s := configuredSampler(t, DefaultParams())
	_, err := s.NextFrame()
	require.NoError(t, err)
	_, err = s.NextFrame()
	require.NoError(t, err)

	assert.Equal(t, RefreshNone, s.ToggleLayer(LayerParabola, true))
	assert.Equal(t, 2, s.Snapshot().Frame, "no-op toggle keeps the clock")

	assert.Equal(t, RefreshRedraw, s.ToggleLayer(LayerParabola, false))
	assert.Equal(t, 0, s.Snapshot().Frame)

	frame, err := s.NextFrame()
	require.NoError(t, err)
	assert.True(t, frame.Redraw)
	require.NotNil(t, frame.Static)
	assert.Nil(t, frame.Static.Parabola)
	assert.NotNil(t, frame.Static.EnergyLevels)

	assert.Equal(t, RefreshRedraw, s.ToggleLayer(LayerEnergyLevels, false))
	frame, err = s.NextFrame()
	require.NoError(t, err)
	assert.True(t, frame.Redraw)
	assert.Nil(t, frame.Static)
	assert.False(t, s.Layers().EnergyLevels)
}

func TestSampler_OverflowSurfacesAsError(t *testing.T) {
	p := DefaultParams()
	p.LevelCount = 2
	p.Coefficients = []complex128{1.79e308, 1.79e308}
	s := configuredSampler(t, p)

	frame, err := s.SampleFrame(0)
	assert.Nil(t, frame)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oscillator.ErrNonFinite))
	assert.Contains(t, err.Error(), "frame 0")
}

func TestSampler_Observables(t *testing.T) {
	p := DefaultParams()
	p.Coefficients = []complex128{1, 1i}
	s := configuredSampler(t, p)

	obs := s.Observables()
	assert.InDelta(t, 2.0, obs.Norm, 1e-12)
	assert.InDelta(t, 1.0, obs.MeanEnergy, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, obs.Weights, 1e-12)
}
