// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/qho/internal/config"
	"github.com/aristath/qho/internal/modules/animation"
	"github.com/aristath/qho/internal/scheduler"
	"github.com/aristath/qho/internal/server"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Build and configure the sampler
// 2. Choose the render sink (websocket hub unless sink is given)
// 3. Build the driver
// 4. Register jobs
// Every loop and stream ends when ctx is done.
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger, sink animation.Sink) (*Container, *JobInstances, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{}

	// Step 1: Sampler
	if err := InitializeSampler(container, cfg, log); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sampler: %w", err)
	}

	// Step 2: Sink
	if sink == nil {
		container.Stream = server.NewStreamHub(ctx, container.Sampler, cfg.StreamBuffer, cfg.AllowedOrigins, log)
		sink = container.Stream
	}
	container.Sink = sink

	// Step 3: Driver
	container.Driver = animation.NewDriver(ctx, container.Sampler, sink, cfg.Oscillator.DriverOptions(), log)

	// Step 4: Jobs
	container.Scheduler = scheduler.New(log)
	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, jobs, nil
}

// InitializeSampler creates the sampler and applies the configured plot
func InitializeSampler(container *Container, cfg *config.Config, log zerolog.Logger) error {
	sampler, err := animation.NewSampler(cfg.Oscillator.SamplerOptions(), log)
	if err != nil {
		return err
	}

	params := cfg.Oscillator.Params()
	if err := sampler.Reconfigure(params); err != nil {
		return err
	}

	container.Sampler = sampler
	log.Info().
		Int("levels", params.LevelCount).
		Str("state", animation.FormatCoefficients(params.Coefficients)).
		Msg("Sampler configured")
	return nil
}

// Stop halts the driver and the scheduler
func (c *Container) Stop() {
	if c.Driver != nil {
		c.Driver.Stop()
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
}
