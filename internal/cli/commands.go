// ABOUTME: Subcommands for local calibration work
// ABOUTME: Interactive calibrator, batch extraction, curve listing and version
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alon/egloorator/internal/player"
	"github.com/alon/egloorator/internal/ui"
	"github.com/alon/egloorator/internal/version"
	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/audio/encode"
	"github.com/alon/egloorator/pkg/audio/output"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/loudness"
)

// CalibrateCmd runs the interactive calibrator
type CalibrateCmd struct {
	File      string `arg:"" help:"Recording to calibrate." type:"existingfile"`
	OutputDir string `help:"Directory for saved extractions. Overrides OUTPUT_DIR." type:"path"`
	NoAudio   bool   `help:"Disable playback."`
	Volume    int    `help:"Initial playback volume, 0-100." default:"100"`
}

// Run starts the TUI
func (c *CalibrateCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(true)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := g.loadSession(c.File)
	if err != nil {
		return err
	}

	opts := ui.Options{
		Source:    c.File,
		OutputDir: g.outputDir(c.OutputDir),
		Save:      encode.SaveWAV,
	}
	if !c.NoAudio {
		pb := player.NewPlayback(output.NewOto())
		pb.SetVolume(c.Volume)
		opts.Player = pb
	}

	slog.Info("Starting calibrator", "file", c.File, "output_dir", opts.OutputDir)
	return ui.Run(session, opts)
}

// ExtractCmd saves the above-threshold audio without a UI
type ExtractCmd struct {
	File      string   `arg:"" help:"Recording to extract from." type:"existingfile"`
	Threshold *float64 `help:"Threshold in dB. Defaults to the midpoint of the recording's level range."`
	Output    string   `short:"o" help:"Output path. Defaults to overwritten_<name>_<threshold>.wav (or .raw) in OUTPUT_DIR." type:"path"`
	Format    string   `help:"Output format; a .pcm/.raw output path implies raw." enum:"wav,raw" default:"wav"`
}

// Run extracts and saves
func (c *ExtractCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := g.loadSession(c.File)
	if err != nil {
		return err
	}

	if c.Threshold != nil {
		session.SetThreshold(*c.Threshold)
	}

	samples, segments := session.ExtractAboveThreshold()

	raw := c.Format == "raw" || (c.Output != "" && isRaw(c.Output))

	path := c.Output
	if path == "" {
		name := calibrate.OutputName(c.File, session.Threshold())
		if raw {
			name = strings.TrimSuffix(name, ".wav") + ".raw"
		}
		path = filepath.Join(g.outputDir(""), name)
	}

	if raw {
		params := session.Params()
		params.SampleWidth = g.rawWidth()
		err = encode.SaveRaw(path, params, samples)
	} else {
		err = encode.SaveWAV(path, session.Params(), samples)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out(), "Wrote %s: %d segments, %d samples (%s) at threshold %s dB\n",
		path, len(segments), len(samples),
		segments.Duration(session.Params().FrameRate),
		strconv.FormatFloat(session.Threshold(), 'g', -1, 64))

	return nil
}

// CurveCmd prints the loudness curve
type CurveCmd struct {
	File      string   `arg:"" help:"Recording to analyse." type:"existingfile"`
	JSON      bool     `name:"json" help:"Print JSON instead of a table."`
	Threshold *float64 `help:"Mark windows above this threshold. Defaults to the midpoint."`
}

// curveReport is the JSON form of the curve command
type curveReport struct {
	Source     string              `json:"source"`
	Params     audio.Params        `json:"params"`
	WindowSize int                 `json:"window_size"`
	Threshold  float64             `json:"threshold"`
	Min        float64             `json:"min"`
	Max        float64             `json:"max"`
	Points     []loudness.Point    `json:"points"`
	Segments   []calibrate.Segment `json:"segments"`
}

// Run prints the curve
func (c *CurveCmd) Run(g *Globals) error {
	closeLog, err := g.setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := g.loadSession(c.File)
	if err != nil {
		return err
	}
	if c.Threshold != nil {
		session.SetThreshold(*c.Threshold)
	}

	curve := session.Curve()
	low, high := session.Range()
	threshold := session.Threshold()

	if c.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(curveReport{
			Source:     filepath.Base(c.File),
			Params:     session.Params(),
			WindowSize: session.WindowSize(),
			Threshold:  threshold,
			Min:        low,
			Max:        high,
			Points:     curve.Points,
			Segments:   session.Segments(),
		})
	}

	rows := make([][]string, 0, curve.Len())
	for _, p := range curve.Points {
		above := ""
		if p.Level > threshold {
			above = "●"
		}
		rows = append(rows, []string{
			strconv.FormatFloat(p.Time, 'f', 3, 64),
			strconv.FormatFloat(p.Level, 'f', 2, 64),
			above,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME (s)", "LEVEL (dB)", "ABOVE").
		Rows(rows...)

	fmt.Fprintln(g.out(), t.Render())
	fmt.Fprintf(g.out(), "%d windows of %d samples, range %.2f .. %.2f dB, threshold %.2f dB, %d above\n",
		curve.Len(), session.WindowSize(), low, high, threshold, len(session.Segments()))

	return nil
}

// VersionCmd prints version information
type VersionCmd struct{}

// Run prints the version
func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintln(g.out(), version.String())
	return nil
}
