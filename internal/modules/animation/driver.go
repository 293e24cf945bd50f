package animation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qho/internal/utils"
)

const (
	// DefaultFrameInterval is the wall time per frame, roughly 15 frames per
	// second.
	DefaultFrameInterval = 65 * time.Millisecond
	// DefaultMinInterval keeps the ticker from spinning when sampling is
	// slower than the frame interval.
	DefaultMinInterval = 5 * time.Millisecond
)

// Sink receives the frames a Driver produces. RenderFrame is called from the
// driver goroutine and must not call back into the driver.
type Sink interface {
	RenderFrame(frame *Frame) error
	RenderError(err error)
}

// DriverOptions tune the tick cadence.
type DriverOptions struct {
	FrameInterval time.Duration
	MinInterval   time.Duration
}

// DriverStats describe the driver for status reporting.
type DriverStats struct {
	Running      bool                 `json:"running"`
	Interval     time.Duration        `json:"interval_ns"`
	FrameCost    time.Duration        `json:"frame_cost_ns"`
	Starts       int64                `json:"starts"`
	Frames       int64                `json:"frames"`
	SampleErrors int64                `json:"sample_errors"`
	SinkErrors   int64                `json:"sink_errors"`
	Render       utils.MetricsSummary `json:"render"`
}

// Driver ticks a Sampler at a fixed cadence and pushes every frame into a
// Sink. At most one loop goroutine exists at any time.
type Driver struct {
	ctx     context.Context
	sampler *Sampler
	sink    Sink
	opts    DriverOptions
	log     zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	cost     time.Duration

	starts       atomic.Int64
	frames       atomic.Int64
	sampleErrors atomic.Int64
	sinkErrors   atomic.Int64
	render       *utils.PerformanceMetrics
}

// NewDriver returns a stopped driver. Every loop it starts ends when ctx is
// done, so callers pass the process context here and not a request context.
func NewDriver(ctx context.Context, sampler *Sampler, sink Sink, opts DriverOptions, log zerolog.Logger) *Driver {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	return &Driver{
		ctx:     ctx,
		sampler: sampler,
		sink:    sink,
		opts:    opts,
		log:     log.With().Str("component", "animation_driver").Logger(),
		render:  utils.NewPerformanceMetrics("render_frame"),
	}
}

// Start stops any running loop, measures the cost of one frame, rewinds the
// clock and starts a new loop whose interval is the frame interval minus
// that cost.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("failed to start animation: %w", err)
	}

	timer := utils.NewTimer("sample_frame", d.log)
	if _, err := d.sampler.SampleFrame(0); err != nil {
		return fmt.Errorf("failed to sample first frame: %w", err)
	}
	cost := timer.StopWithBudget(d.opts.FrameInterval)

	interval := d.opts.FrameInterval - cost
	if interval < d.opts.MinInterval {
		interval = d.opts.MinInterval
	}

	d.sampler.ResetClock()

	ctx, cancel := context.WithCancel(d.ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.interval = interval
	d.cost = cost
	d.starts.Add(1)

	go d.run(ctx, interval, done)

	d.log.Info().
		Dur("interval", interval).
		Dur("frame_cost", cost).
		Msg("Animation started")

	return nil
}

// Restart is a hard restart: the running loop, if any, is replaced by a new
// one that re-measures the frame cost.
func (d *Driver) Restart() error {
	return d.Start()
}

// Apply reacts to a layer toggle. A redraw restarts a running loop; a clock
// reset needs nothing further because the sampler already rewound.
func (d *Driver) Apply(r Refresh) error {
	if r == RefreshRedraw && d.Running() {
		return d.Restart()
	}
	return nil
}

// Stop cancels the running loop and waits for it to exit.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopLocked() {
		d.log.Info().Msg("Animation stopped")
	}
}

func (d *Driver) stopLocked() bool {
	if d.cancel == nil {
		return false
	}
	d.cancel()
	<-d.done
	d.cancel = nil
	d.done = nil
	return true
}

// Running reports whether a loop goroutine is alive.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done == nil {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// Interval returns the tick interval of the current or last loop.
func (d *Driver) Interval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interval
}

// Stats returns counters and render timings.
func (d *Driver) Stats() DriverStats {
	running := d.Running()

	d.mu.Lock()
	interval, cost := d.interval, d.cost
	d.mu.Unlock()

	return DriverStats{
		Running:      running,
		Interval:     interval,
		FrameCost:    cost,
		Starts:       d.starts.Load(),
		Frames:       d.frames.Load(),
		SampleErrors: d.sampleErrors.Load(),
		SinkErrors:   d.sinkErrors.Load(),
		Render:       d.render.Summary(),
	}
}

// LogStats writes the render timing summary.
func (d *Driver) LogStats() {
	d.render.LogMetrics(d.log)
}

func (d *Driver) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Driver) tick() {
	timer := utils.NewTimer("render_frame", d.log)

	frame, err := d.sampler.NextFrame()
	if err != nil {
		d.sampleErrors.Add(1)
		d.log.Error().Err(err).Msg("Failed to sample frame")
		d.sink.RenderError(err)
		return
	}

	err = d.sink.RenderFrame(frame)
	d.render.Record(timer.Stop())
	if err != nil {
		d.sinkErrors.Add(1)
		d.log.Warn().Err(err).Int("frame", frame.Index).Msg("Sink failed to render frame")
		return
	}
	d.frames.Add(1)
}
