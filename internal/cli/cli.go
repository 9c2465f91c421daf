// ABOUTME: Command-line interface definition
// ABOUTME: Kong command tree, shared flags and session loading for every subcommand
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alon/egloorator/internal/config"
	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/audio/decode"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/loudness"
)

// CLI defines the command-line interface
type CLI struct {
	Globals `embed:""`

	Calibrate CalibrateCmd `cmd:"" help:"Pick a threshold interactively in the terminal."`
	Extract   ExtractCmd   `cmd:"" help:"Save the audio above a threshold to a WAV file."`
	Curve     CurveCmd     `cmd:"" help:"Print the loudness curve of a recording."`
	Serve     ServeCmd     `cmd:"" help:"Share a calibration session with remote front ends over WebSocket."`
	Discover  DiscoverCmd  `cmd:"" help:"List calibration bridges on the local network."`
	Remote    RemoteCmd    `cmd:"" help:"Drive a running calibration bridge."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Globals holds flags shared by every subcommand
type Globals struct {
	WindowMs    int `name:"window-ms" help:"Analysis window in milliseconds. Overrides WINDOW_MS." default:"0"`
	MaxDuration int `name:"max-duration" help:"Keep at most this many seconds around the loudest sample, 0 keeps all. Overrides MAX_DURATION_SEC." default:"-1"`
	RawRate     int `name:"raw-rate" help:"Frame rate of headerless .pcm/.raw input." default:"44100"`
	RawChannels int `name:"raw-channels" help:"Channel count of headerless .pcm/.raw input." default:"1"`
	RawWidth    int `name:"raw-width" help:"Bytes per sample of headerless .pcm/.raw input and output (2 or 3)." default:"2"`

	// Config is nil when loading failed; ConfigErr then holds the reason and
	// is reported by the first command that needs settings.
	Config    *config.Config `kong:"-"`
	ConfigErr error          `kong:"-"`
	Stdout    io.Writer      `kong:"-"`
}

// errNoConfig is returned when a command runs without loaded settings
var errNoConfig = errors.New("configuration not loaded")

// windowDuration resolves the analysis window from flags and environment
func (g *Globals) windowDuration() time.Duration {
	if g.WindowMs > 0 {
		return time.Duration(g.WindowMs) * time.Millisecond
	}
	return g.Config.WindowDuration()
}

// maxDuration resolves the truncation limit from flags and environment
func (g *Globals) maxDuration() time.Duration {
	if g.MaxDuration >= 0 {
		return time.Duration(g.MaxDuration) * time.Second
	}
	return g.Config.MaxDuration()
}

// out returns the writer for command output
func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// setupLogging installs the default logger. With toFile set, logs go only to
// the configured log file so they do not corrupt a full-screen UI.
func (g *Globals) setupLogging(toFile bool) (func(), error) {
	if g.Config == nil {
		if g.ConfigErr != nil {
			return nil, g.ConfigErr
		}
		return nil, errNoConfig
	}

	if !toFile {
		slog.SetDefault(g.Config.NewLogger(os.Stderr))
		return func() {}, nil
	}

	f, err := os.OpenFile(g.Config.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	slog.SetDefault(g.Config.NewLogger(f))

	return func() { _ = f.Close() }, nil
}

// isRaw reports whether path names a headerless PCM file
func isRaw(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcm", ".raw":
		return true
	}
	return false
}

// rawWidth returns the raw sample width, defaulting to 16-bit
func (g *Globals) rawWidth() int {
	if g.RawWidth <= 0 {
		return audio.SampleWidth16
	}
	return g.RawWidth
}

// loadBuffer decodes path, reading headerless PCM with the raw flags
func (g *Globals) loadBuffer(path string) (audio.Buffer, error) {
	if isRaw(path) {
		return decode.LoadRaw(path, audio.Params{
			FrameRate:   g.RawRate,
			Channels:    g.RawChannels,
			SampleWidth: g.rawWidth(),
		})
	}
	return decode.Load(path)
}

// loadSession decodes path, applies the duration limit and builds a session
func (g *Globals) loadSession(path string) (*calibrate.Session, error) {
	buf, err := g.loadBuffer(path)
	if err != nil {
		return nil, err
	}

	if limit := g.maxDuration(); limit > 0 && buf.Duration() > limit {
		trimmed := audio.TrimAroundPeak(buf, limit)
		slog.Info("Truncated recording around its peak",
			"path", path, "duration", buf.Duration(), "kept", trimmed.Duration())
		buf = trimmed
	}

	window := g.windowDuration()
	windowSize := loudness.WindowSizeFor(window, buf.Params.FrameRate)
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: %s is shorter than one frame at %d Hz",
			loudness.ErrInvalidWindowSize, window, buf.Params.FrameRate)
	}

	session, err := calibrate.NewSession(buf.Samples, buf.Params, calibrate.WithWindowSize(windowSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	low, high := session.Range()
	slog.Debug("Session ready",
		"path", path, "window_size", windowSize, "windows", session.Curve().Len(),
		"min_db", low, "max_db", high, "threshold", session.Threshold())

	return session, nil
}

// outputDir picks the flag value over OUTPUT_DIR
func (g *Globals) outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return g.Config.OutputDir
}
