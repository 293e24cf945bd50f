package utils

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Timer measures how long one operation takes.
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer creates a new timer with the given name
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")

	return duration
}

// StopWithBudget is Stop, plus a warning when the operation overran budget.
func (t *Timer) StopWithBudget(budget time.Duration) time.Duration {
	duration := t.Stop()
	if budget > 0 && duration > budget {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Dur("budget", budget).
			Msg("Operation exceeded its time budget")
	}
	return duration
}

// PerformanceMetrics aggregates repeated measurements of one operation.
type PerformanceMetrics struct {
	mu sync.Mutex

	OperationName string
	CallCount     int64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastDuration  time.Duration
}

// NewPerformanceMetrics returns empty metrics for the named operation.
func NewPerformanceMetrics(name string) *PerformanceMetrics {
	return &PerformanceMetrics{OperationName: name}
}

// Record adds one measurement.
func (pm *PerformanceMetrics) Record(d time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.CallCount == 0 || d < pm.MinDuration {
		pm.MinDuration = d
	}
	if d > pm.MaxDuration {
		pm.MaxDuration = d
	}
	pm.CallCount++
	pm.TotalDuration += d
	pm.LastDuration = d
}

// MetricsSummary is a point-in-time copy of PerformanceMetrics.
type MetricsSummary struct {
	OperationName string        `json:"operation"`
	CallCount     int64         `json:"call_count"`
	TotalDuration time.Duration `json:"total_ns"`
	MinDuration   time.Duration `json:"min_ns"`
	MaxDuration   time.Duration `json:"max_ns"`
	AvgDuration   time.Duration `json:"avg_ns"`
	LastDuration  time.Duration `json:"last_ns"`
}

// Summary returns the aggregated values.
func (pm *PerformanceMetrics) Summary() MetricsSummary {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	s := MetricsSummary{
		OperationName: pm.OperationName,
		CallCount:     pm.CallCount,
		TotalDuration: pm.TotalDuration,
		MinDuration:   pm.MinDuration,
		MaxDuration:   pm.MaxDuration,
		LastDuration:  pm.LastDuration,
	}
	if pm.CallCount > 0 {
		s.AvgDuration = pm.TotalDuration / time.Duration(pm.CallCount)
	}
	return s
}

// LogMetrics logs the aggregated performance metrics
func (pm *PerformanceMetrics) LogMetrics(log zerolog.Logger) {
	s := pm.Summary()
	if s.CallCount == 0 {
		return
	}

	log.Info().
		Str("operation", s.OperationName).
		Int64("call_count", s.CallCount).
		Dur("total_duration", s.TotalDuration).
		Dur("avg_duration", s.AvgDuration).
		Dur("min_duration", s.MinDuration).
		Dur("max_duration", s.MaxDuration).
		Msg("Performance metrics summary")
}
