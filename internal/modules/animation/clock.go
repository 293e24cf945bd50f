package animation

import "math"

const (
	// DefaultFramesPerCycle is the number of frames in one animation loop.
	DefaultFramesPerCycle = 192
	// CyclePeriod is the physical time one loop covers. 4π is the period of
	// the ground-state phase e^(−it/2) and a whole number of turns for every
	// other level, so the last frame runs into the first without a jump.
	CyclePeriod = 4 * math.Pi
)

// Clock maps discrete frame indices onto physical time and tracks the next
// frame to draw.
type Clock struct {
	frame  int
	frames int
	dt     float64
}

// NewClock returns a clock of the given length whose frames evenly cover
// CyclePeriod. A non-positive length selects DefaultFramesPerCycle.
func NewClock(frames int) Clock {
	if frames <= 0 {
		frames = DefaultFramesPerCycle
	}
	return Clock{frames: frames, dt: CyclePeriod / float64(frames)}
}

// Frames returns the loop length.
func (c *Clock) Frames() int { return c.frames }

// Step returns Δt, the physical time between consecutive frames.
func (c *Clock) Step() float64 { return c.dt }

// Frame returns the next frame to be drawn.
func (c *Clock) Frame() int { return c.frame }

// Time converts a frame index to physical time.
func (c *Clock) Time(frame int) float64 {
	return float64(frame) * c.dt
}

// Wrap reduces a non-negative frame index into [0, Frames).
func (c *Clock) Wrap(frame int) int {
	return frame % c.frames
}

// Advance returns the current frame and moves the clock forward by one,
// wrapping at the end of the loop.
func (c *Clock) Advance() int {
	f := c.frame
	c.frame = (c.frame + 1) % c.frames
	return f
}

// Reset rewinds the clock to frame 0.
func (c *Clock) Reset() {
	c.frame = 0
}
