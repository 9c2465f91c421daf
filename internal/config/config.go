// ABOUTME: Environment configuration for the calibration tool
// ABOUTME: Loads, validates and turns settings into a structured logger
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// ErrInvalidConfig is returned when a setting is out of range
var ErrInvalidConfig = errors.New("config: invalid configuration")

var validate = validator.New()

// Config holds all configuration for the application.
type Config struct {
	// Analysis settings
	WindowMs       int `env:"WINDOW_MS, default=100" validate:"gt=0,lte=10000" json:"window_ms"`
	MaxDurationSec int `env:"MAX_DURATION_SEC, default=60" validate:"gte=0" json:"max_duration_sec"`

	// Output settings
	OutputDir string `env:"OUTPUT_DIR, default=." validate:"required" json:"output_dir"`

	// Bridge settings
	ListenPort int `env:"LISTEN_PORT, default=8937" validate:"gt=0,lte=65535" json:"listen_port"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" validate:"oneof=text json" json:"log_format"`
	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error" json:"log_level"`
	LogFile   string `env:"LOG_FILE, default=egloorator.log" json:"log_file"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	return load(context.Background(), nil)
}

// load processes the environment, or lookuper when it is non-nil
func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	ec := &envconfig.Config{Target: cfg}
	if lookuper != nil {
		ec.Lookuper = lookuper
	}

	if err := envconfig.ProcessWith(ctx, ec); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field against its range
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WindowDuration returns the analysis window length
func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// MaxDuration returns the load-time truncation limit; zero disables it
func (c *Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSec) * time.Second
}

// NewLogger creates a structured logger writing to w.
// When LogFormat is "json", it outputs JSON logs.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WindowMs: %d, MaxDurationSec: %d, OutputDir: %s, ListenPort: %d, LogFormat: %s, LogLevel: %s, LogFile: %s}",
		c.WindowMs,
		c.MaxDurationSec,
		c.OutputDir,
		c.ListenPort,
		c.LogFormat,
		c.LogLevel,
		c.LogFile,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
