package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayer(t *testing.T) {
	tests := []struct {
		input    string
		expected Layer
	}{
		{"real", LayerReal},
		{"RL", LayerReal},
		{"imaginary", LayerImaginary},
		{" imag ", LayerImaginary},
		{"im", LayerImaginary},
		{"parabola", LayerParabola},
		{"parab", LayerParabola},
		{"energy_levels", LayerEnergyLevels},
		{"energy-levels", LayerEnergyLevels},
		{"E_n", LayerEnergyLevels},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l, err := ParseLayer(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, l)
		})
	}
}

func TestParseLayer_Unknown(t *testing.T) {
	_, err := ParseLayer("phase")
	assert.ErrorIs(t, err, ErrInvalidLayer)
	assert.True(t, IsValidation(err))
}

func TestLayer_String(t *testing.T) {
	assert.Equal(t, "real", LayerReal.String())
	assert.Equal(t, "energy_levels", LayerEnergyLevels.String())
	assert.Equal(t, "layer(9)", Layer(9).String())
}

func TestLayer_Static(t *testing.T) {
	assert.False(t, LayerReal.Static())
	assert.False(t, LayerImaginary.Static())
	assert.True(t, LayerParabola.Static())
	assert.True(t, LayerEnergyLevels.Static())
}

func TestLayers_Set(t *testing.T) {
	v := AllLayers()
	for _, l := range []Layer{LayerReal, LayerImaginary, LayerParabola, LayerEnergyLevels} {
		assert.True(t, v.Visible(l))
		assert.False(t, v.set(l, true), "unchanged")
		assert.True(t, v.set(l, false))
		assert.False(t, v.Visible(l))
	}
	assert.Equal(t, Layers{}, v)
	assert.False(t, v.set(Layer(42), true))
}

func TestRefresh_String(t *testing.T) {
	assert.Equal(t, "none", RefreshNone.String())
	assert.Equal(t, "clock", RefreshClock.String())
	assert.Equal(t, "redraw", RefreshRedraw.String())
}
