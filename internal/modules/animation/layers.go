package animation

import (
	"fmt"
	"strings"
)

// Layer names one of the independently toggled display layers.
type Layer int

const (
	LayerReal Layer = iota
	LayerImaginary
	LayerParabola
	LayerEnergyLevels
)

var layerNames = map[Layer]string{
	LayerReal:         "real",
	LayerImaginary:    "imaginary",
	LayerParabola:     "parabola",
	LayerEnergyLevels: "energy_levels",
}

var layerAliases = map[string]Layer{
	"real":          LayerReal,
	"rl":            LayerReal,
	"imaginary":     LayerImaginary,
	"imag":          LayerImaginary,
	"im":            LayerImaginary,
	"parabola":      LayerParabola,
	"parab":         LayerParabola,
	"energy_levels": LayerEnergyLevels,
	"energy-levels": LayerEnergyLevels,
	"e_n":           LayerEnergyLevels,
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// Static reports whether the layer is a decorative trace that is drawn once
// per redraw rather than once per frame.
func (l Layer) Static() bool {
	return l == LayerParabola || l == LayerEnergyLevels
}

// ParseLayer resolves a layer name, accepting the short checkbox keys too.
func ParseLayer(name string) (Layer, error) {
	if l, ok := layerAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return 0, invalid("layer", name, ErrInvalidLayer)
}

// Layers holds the visibility of every layer.
type Layers struct {
	Real         bool `json:"real" msgpack:"real"`
	Imaginary    bool `json:"imaginary" msgpack:"imaginary"`
	Parabola     bool `json:"parabola" msgpack:"parabola"`
	EnergyLevels bool `json:"energy_levels" msgpack:"energy_levels"`
}

// AllLayers returns every layer switched on, the startup state.
func AllLayers() Layers {
	return Layers{Real: true, Imaginary: true, Parabola: true, EnergyLevels: true}
}

// Visible reports whether l is switched on.
func (v Layers) Visible(l Layer) bool {
	switch l {
	case LayerReal:
		return v.Real
	case LayerImaginary:
		return v.Imaginary
	case LayerParabola:
		return v.Parabola
	case LayerEnergyLevels:
		return v.EnergyLevels
	}
	return false
}

// set switches l and reports whether anything changed.
func (v *Layers) set(l Layer, on bool) bool {
	if v.Visible(l) == on {
		return false
	}
	switch l {
	case LayerReal:
		v.Real = on
	case LayerImaginary:
		v.Imaginary = on
	case LayerParabola:
		v.Parabola = on
	case LayerEnergyLevels:
		v.EnergyLevels = on
	default:
		return false
	}
	return true
}

// Refresh says what a change costs the renderer.
type Refresh int

const (
	// RefreshNone means nothing changed.
	RefreshNone Refresh = iota
	// RefreshClock means the animation restarts from frame 0; the static
	// layer stays as drawn.
	RefreshClock
	// RefreshRedraw means the static layer must be re-issued and the driver
	// restarted, the same as after a reconfiguration.
	RefreshRedraw
)

func (r Refresh) String() string {
	switch r {
	case RefreshClock:
		return "clock"
	case RefreshRedraw:
		return "redraw"
	default:
		return "none"
	}
}
