/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is built once per binary and owns the lifecycle of the animation
 * driver and the scheduler.
 */
package di

import (
	"github.com/aristath/qho/internal/modules/animation"
	"github.com/aristath/qho/internal/scheduler"
	"github.com/aristath/qho/internal/server"
)

// Container holds all application dependencies
type Container struct {
	Sampler *animation.Sampler
	Driver  *animation.Driver

	// Stream is nil when frames go to an external sink.
	Stream *server.StreamHub
	Sink   animation.Sink

	Scheduler *scheduler.Scheduler
}

// JobInstances holds references to registered jobs for manual triggering
type JobInstances struct {
	AnimationStats *scheduler.AnimationStatsJob
}
