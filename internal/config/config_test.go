package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qho/internal/modules/animation"
)

var configKeys = []string{
	"LOG_LEVEL", "LOG_PRETTY", "GO_PORT", "DEV_MODE", "QHO_ALLOWED_ORIGINS",
	"QHO_STATS_SCHEDULE", "QHO_STREAM_BUFFER", "QHO_LEVELS", "QHO_X_PROPORTION",
	"QHO_SUPER_Y_BOUND", "QHO_DX", "QHO_FRAMES_PER_CYCLE", "QHO_FRAME_INTERVAL",
	"QHO_STATE",
}

// isolate clears every config variable and moves into an empty directory so
// no .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 8001, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "@every 1m", cfg.StatsSchedule)
	assert.Equal(t, 4, cfg.StreamBuffer)

	o := cfg.Oscillator
	assert.Equal(t, animation.DefaultFramesPerCycle, o.FramesPerCycle)
	assert.Equal(t, animation.DefaultFrameInterval, o.FrameInterval)
	assert.Equal(t, animation.DefaultGridStep, o.GridStep)

	p := o.Params()
	assert.Equal(t, 4, p.LevelCount, "level count follows the coefficient count")
	assert.Equal(t, 1.0, p.XProportion)
	assert.Equal(t, 2.0, p.SuperpositionYBound)
	assert.Equal(t, []complex128{1, 1, 1, 1}, p.Coefficients)
}

func TestLoad_FromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("GO_PORT", "9100")
	t.Setenv("DEV_MODE", "1")
	t.Setenv("QHO_ALLOWED_ORIGINS", "http://localhost:3000/, https://QHO.example, http://localhost:3000")
	t.Setenv("QHO_LEVELS", "6")
	t.Setenv("QHO_X_PROPORTION", "2")
	t.Setenv("QHO_SUPER_Y_BOUND", "0.75")
	t.Setenv("QHO_DX", "0.02")
	t.Setenv("QHO_FRAMES_PER_CYCLE", "96")
	t.Setenv("QHO_FRAME_INTERVAL", "40ms")
	t.Setenv("QHO_STATE", "1, 1j")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, []string{"http://localhost:3000", "https://qho.example"}, cfg.AllowedOrigins)

	o := cfg.Oscillator
	assert.Equal(t, animation.Options{GridStep: 0.02, FramesPerCycle: 96}, o.SamplerOptions())
	assert.Equal(t, 40*time.Millisecond, o.DriverOptions().FrameInterval)

	p := o.Params()
	assert.Equal(t, 6, p.LevelCount)
	assert.Equal(t, 2.0, p.XProportion)
	assert.Equal(t, 0.75, p.SuperpositionYBound)
	assert.Equal(t, []complex128{1, 1i}, p.Coefficients)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("QHO_STATE=0,1\nGO_PORT=9200\n"), 0o600))
	// godotenv never overrides variables that are already set, even empty ones.
	require.NoError(t, os.Unsetenv("QHO_STATE"))
	require.NoError(t, os.Unsetenv("GO_PORT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, "0,1", cfg.Oscillator.State)
}

func TestLoad_UnparseableValuesFallBack(t *testing.T) {
	isolate(t)
	t.Setenv("GO_PORT", "eighty")
	t.Setenv("QHO_X_PROPORTION", "wide")
	t.Setenv("QHO_FRAME_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 1.0, cfg.Oscillator.XProportion)
	assert.Equal(t, animation.DefaultFrameInterval, cfg.Oscillator.FrameInterval)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		key, value, message string
	}{
		{"GO_PORT", "0", "GO_PORT"},
		{"QHO_STREAM_BUFFER", "0", "QHO_STREAM_BUFFER"},
		{"QHO_LEVELS", "-1", "QHO_LEVELS"},
		{"QHO_LEVELS", "1001", "QHO_LEVELS"},
		{"QHO_X_PROPORTION", "-1", "QHO_X_PROPORTION"},
		{"QHO_SUPER_Y_BOUND", "0", "QHO_SUPER_Y_BOUND"},
		{"QHO_DX", "-0.01", "QHO_DX"},
		{"QHO_FRAMES_PER_CYCLE", "-5", "QHO_FRAMES_PER_CYCLE"},
		{"QHO_FRAME_INTERVAL", "-1s", "QHO_FRAME_INTERVAL"},
		{"QHO_STATE", "1,x", "QHO_STATE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad_InvalidStateIsValidationError(t *testing.T) {
	isolate(t)
	t.Setenv("QHO_STATE", "1,,2")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, animation.IsValidation(err))
	assert.ErrorIs(t, err, animation.ErrInvalidCoefficients)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("QHO_TEST_VALUE", "")
	assert.Equal(t, "fallback", getEnv("QHO_TEST_VALUE", "fallback"))
	assert.Equal(t, 3, getEnvAsInt("QHO_TEST_VALUE", 3))
	assert.Equal(t, 1.5, getEnvAsFloat("QHO_TEST_VALUE", 1.5))
	assert.True(t, getEnvAsBool("QHO_TEST_VALUE", true))
	assert.Equal(t, time.Second, getEnvAsDuration("QHO_TEST_VALUE", time.Second))

	t.Setenv("QHO_TEST_VALUE", "2.5")
	assert.Equal(t, "2.5", getEnv("QHO_TEST_VALUE", "fallback"))
	assert.Equal(t, 3, getEnvAsInt("QHO_TEST_VALUE", 3))
	assert.Equal(t, 2.5, getEnvAsFloat("QHO_TEST_VALUE", 1.5))
}
