// ABOUTME: Tests for environment configuration loading and validation
// ABOUTME: Covers defaults, overrides, invalid values and logger construction
package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.WindowMs)
	assert.Equal(t, 60, cfg.MaxDurationSec)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, 8937, cfg.ListenPort)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "egloorator.log", cfg.LogFile)

	assert.Equal(t, 100*time.Millisecond, cfg.WindowDuration())
	assert.Equal(t, time.Minute, cfg.MaxDuration())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"WINDOW_MS":        "50",
		"MAX_DURATION_SEC": "0",
		"OUTPUT_DIR":       "/tmp/out",
		"LISTEN_PORT":      "9000",
		"LOG_FORMAT":       "json",
		"LOG_LEVEL":        "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.WindowMs)
	assert.Equal(t, time.Duration(0), cfg.MaxDuration())
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 9000, cfg.ListenPort)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FromProcessEnvironment(t *testing.T) {
	t.Setenv("WINDOW_MS", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.WindowMs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero window", map[string]string{"WINDOW_MS": "0"}},
		{"negative max duration", map[string]string{"MAX_DURATION_SEC": "-1"}},
		{"port out of range", map[string]string{"LISTEN_PORT": "70000"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Unparseable(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"WINDOW_MS": "abc"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &Config{LogFormat: "json", LogLevel: "info"}
		cfg.NewLogger(&buf).Info("hello", "key", "value")

		assert.Contains(t, buf.String(), `"msg":"hello"`)
		assert.Contains(t, buf.String(), `"key":"value"`)
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &Config{LogFormat: "text", LogLevel: "info"}
		cfg.NewLogger(&buf).Info("hello", "key", "value")

		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &Config{LogFormat: "text", LogLevel: "warn"}
		logger := cfg.NewLogger(&buf)
		logger.Debug("hidden")
		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLogLevel(tt.input), tt.input)
	}
}

func TestString(t *testing.T) {
	cfg := &Config{WindowMs: 100, OutputDir: "out", ListenPort: 8937, LogFormat: "text", LogLevel: "info"}
	assert.Contains(t, cfg.String(), "WindowMs: 100")
	assert.Contains(t, cfg.String(), "ListenPort: 8937")
}
