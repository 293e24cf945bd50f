// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/qho/internal/modules/animation"
	"github.com/aristath/qho/internal/utils"
)

// Config holds application configuration
type Config struct {
	LogLevel       string
	LogPretty      bool
	Port           int
	DevMode        bool
	AllowedOrigins []string
	StatsSchedule  string // cron spec, seconds field first; empty disables the stats job
	StreamBuffer   int    // frames queued per websocket client before frames are dropped
	Oscillator     OscillatorConfig
}

// OscillatorConfig holds the startup plot configuration
type OscillatorConfig struct {
	Levels         int // 0 means one level per coefficient
	XProportion    float64
	SuperYBound    float64
	GridStep       float64
	FramesPerCycle int
	FrameInterval  time.Duration
	State          string // superposition coefficients in text form

	coefficients []complex128
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", false),
		Port:           getEnvAsInt("GO_PORT", 8001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		AllowedOrigins: utils.ParseOrigins(getEnv("QHO_ALLOWED_ORIGINS", "*")),
		StatsSchedule:  getEnv("QHO_STATS_SCHEDULE", "@every 1m"),
		StreamBuffer:   getEnvAsInt("QHO_STREAM_BUFFER", 4),
		Oscillator: OscillatorConfig{
			Levels:         getEnvAsInt("QHO_LEVELS", 0),
			XProportion:    getEnvAsFloat("QHO_X_PROPORTION", 1),
			SuperYBound:    getEnvAsFloat("QHO_SUPER_Y_BOUND", 2),
			GridStep:       getEnvAsFloat("QHO_DX", animation.DefaultGridStep),
			FramesPerCycle: getEnvAsInt("QHO_FRAMES_PER_CYCLE", animation.DefaultFramesPerCycle),
			FrameInterval:  getEnvAsDuration("QHO_FRAME_INTERVAL", animation.DefaultFrameInterval),
			State:          getEnv("QHO_STATE", "1,1,1,1"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and parses the startup superposition
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.StreamBuffer < 1 {
		return fmt.Errorf("QHO_STREAM_BUFFER must be at least 1, got %d", c.StreamBuffer)
	}

	o := &c.Oscillator
	if o.Levels < 0 || o.Levels > animation.MaxLevels {
		return fmt.Errorf("QHO_LEVELS must be between 0 and %d, got %d", animation.MaxLevels, o.Levels)
	}
	if !positive(o.XProportion) {
		return fmt.Errorf("QHO_X_PROPORTION must be positive, got %g", o.XProportion)
	}
	if !positive(o.SuperYBound) {
		return fmt.Errorf("QHO_SUPER_Y_BOUND must be positive, got %g", o.SuperYBound)
	}
	if !positive(o.GridStep) {
		return fmt.Errorf("QHO_DX must be positive, got %g", o.GridStep)
	}
	if o.FramesPerCycle < 1 {
		return fmt.Errorf("QHO_FRAMES_PER_CYCLE must be at least 1, got %d", o.FramesPerCycle)
	}
	if o.FrameInterval <= 0 {
		return fmt.Errorf("QHO_FRAME_INTERVAL must be positive, got %s", o.FrameInterval)
	}

	coefficients, err := animation.ParseCoefficients(o.State)
	if err != nil {
		return fmt.Errorf("QHO_STATE: %w", err)
	}
	o.coefficients = coefficients

	return nil
}

// Params returns the startup sampler configuration. A zero level count
// shows one level per coefficient, capped at the level limit.
func (o OscillatorConfig) Params() animation.Params {
	levels := o.Levels
	if levels == 0 {
		levels = len(o.coefficients)
		if levels > animation.MaxLevels {
			levels = animation.MaxLevels
		}
	}
	return animation.Params{
		LevelCount:          levels,
		XProportion:         o.XProportion,
		SuperpositionYBound: o.SuperYBound,
		Coefficients:        append([]complex128(nil), o.coefficients...),
	}
}

// SamplerOptions returns the sampler construction options.
func (o OscillatorConfig) SamplerOptions() animation.Options {
	return animation.Options{GridStep: o.GridStep, FramesPerCycle: o.FramesPerCycle}
}

// DriverOptions returns the animation driver cadence.
func (o OscillatorConfig) DriverOptions() animation.DriverOptions {
	return animation.DriverOptions{FrameInterval: o.FrameInterval}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
