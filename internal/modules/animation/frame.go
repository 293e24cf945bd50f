package animation

// TracePair holds the real and imaginary samples of one trace.
// A nil slice means that half is hidden.
type TracePair struct {
	Real []float64 `json:"real,omitempty" msgpack:"real,omitempty"`
	Imag []float64 `json:"imag,omitempty" msgpack:"imag,omitempty"`
}

// LevelTrace is the offset trace pair of one energy level.
type LevelTrace struct {
	Level int `json:"level" msgpack:"level"`
	TracePair
}

// StaticTraces are the decorative traces that only change on reconfiguration.
type StaticTraces struct {
	// Parabola is the potential x² over the grid.
	Parabola []float64 `json:"parabola,omitempty" msgpack:"parabola,omitempty"`
	// EnergyLevels are the heights n+½ of the horizontal level lines.
	EnergyLevels []float64 `json:"energy_levels,omitempty" msgpack:"energy_levels,omitempty"`
}

// Bounds are the axis limits of the two panels.
type Bounds struct {
	XMin      float64 `json:"x_min" msgpack:"x_min"`
	XMax      float64 `json:"x_max" msgpack:"x_max"`
	YMin      float64 `json:"y_min" msgpack:"y_min"`
	YMax      float64 `json:"y_max" msgpack:"y_max"`
	SuperYMin float64 `json:"super_y_min" msgpack:"super_y_min"`
	SuperYMax float64 `json:"super_y_max" msgpack:"super_y_max"`
}

// Frame is everything a renderer needs to draw one animation step.
// It owns its slices; the sampler never writes to a frame it has returned.
type Frame struct {
	Index      int     `json:"index" msgpack:"index"`
	Time       float64 `json:"time" msgpack:"time"`
	Generation uint64  `json:"generation" msgpack:"generation"`

	X             []float64     `json:"x" msgpack:"x"`
	Levels        []LevelTrace  `json:"levels,omitempty" msgpack:"levels,omitempty"`
	Superposition TracePair     `json:"superposition" msgpack:"superposition"`
	Static        *StaticTraces `json:"static,omitempty" msgpack:"static,omitempty"`
	Bounds        Bounds        `json:"bounds" msgpack:"bounds"`
	Layers        Layers        `json:"layers" msgpack:"layers"`

	// Redraw is set when the static layer has to be re-issued before this
	// frame is drawn.
	Redraw bool `json:"redraw" msgpack:"redraw"`
}
