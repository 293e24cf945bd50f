package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/qho/internal/config"
	"github.com/aristath/qho/internal/scheduler"
)

// RegisterJobs registers all jobs with the scheduler
// Returns JobInstances for manual triggering
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	instances := &JobInstances{}

	var stream scheduler.StreamStatsProvider
	if container.Stream != nil {
		stream = container.Stream
	}
	instances.AnimationStats = scheduler.NewAnimationStatsJob(log, container.Driver, stream)

	if cfg.StatsSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.StatsSchedule, instances.AnimationStats); err != nil {
			return nil, fmt.Errorf("failed to register animation stats job: %w", err)
		}
	}

	log.Info().Int("jobs", container.Scheduler.Jobs()).Msg("Jobs registered")
	return instances, nil
}
