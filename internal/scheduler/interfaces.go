package scheduler

import (
	"github.com/aristath/qho/internal/modules/animation"
	"github.com/aristath/qho/internal/server"
)

// DriverStatsProvider defines the contract for reading animation driver counters
// Used by scheduler to enable testing with mocks
type DriverStatsProvider interface {
	Stats() animation.DriverStats
	LogStats()
}

// StreamStatsProvider defines the contract for reading frame stream counters
type StreamStatsProvider interface {
	Stats() server.StreamStats
}
