package scheduler

import (
	"errors"

	"github.com/rs/zerolog"
)

// AnimationStatsJob periodically logs how the animation loop and the frame
// stream are keeping up.
type AnimationStatsJob struct {
	log    zerolog.Logger
	driver DriverStatsProvider
	stream StreamStatsProvider

	lastFrames  int64
	lastDropped int64
}

// NewAnimationStatsJob creates a new animation stats job. stream may be nil.
func NewAnimationStatsJob(log zerolog.Logger, driver DriverStatsProvider, stream StreamStatsProvider) *AnimationStatsJob {
	return &AnimationStatsJob{
		log:    log.With().Str("job", "animation_stats").Logger(),
		driver: driver,
		stream: stream,
	}
}

// Name returns the job name
func (j *AnimationStatsJob) Name() string {
	return "animation_stats"
}

// Run logs the counters accumulated since the previous run
func (j *AnimationStatsJob) Run() error {
	if j.driver == nil {
		return errors.New("animation driver not set")
	}

	stats := j.driver.Stats()
	frames := stats.Frames - j.lastFrames
	j.lastFrames = stats.Frames

	event := j.log.Info().
		Bool("running", stats.Running).
		Dur("interval", stats.Interval).
		Dur("frame_cost", stats.FrameCost).
		Int64("frames", frames).
		Int64("frames_total", stats.Frames).
		Int64("sample_errors", stats.SampleErrors).
		Int64("sink_errors", stats.SinkErrors)

	if j.stream != nil {
		s := j.stream.Stats()
		dropped := s.Dropped - j.lastDropped
		j.lastDropped = s.Dropped
		event = event.
			Int("clients", s.Clients).
			Int64("dropped", dropped)

		if dropped > 0 {
			j.log.Warn().Int64("dropped", dropped).Msg("Stream clients are falling behind")
		}
	}

	event.Msg("Animation stats")
	j.driver.LogStats()
	return nil
}

// Frames returns the frame count seen by the last run
func (j *AnimationStatsJob) Frames() int64 {
	return j.lastFrames
}
