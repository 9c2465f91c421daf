// ABOUTME: Bubbletea model for the threshold calibrator
// ABOUTME: Maps keys to session operations and drives playback and saving
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alon/egloorator/internal/player"
	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/loudness"
)

const (
	fineSteps   = 100
	coarseSteps = 10

	// fallbackStep is used when the curve is flat and has no range to divide
	fallbackStep = 1.0

	volumeStep = 10
)

// Player plays a sample buffer and reports progress
type Player interface {
	Play(ctx context.Context, samples []int16, params audio.Params, progress player.ProgressFunc) error
}

// VolumeControl adjusts playback loudness, including during playback
type VolumeControl interface {
	SetVolume(volume int)
	Volume() int
	SetMuted(muted bool)
	IsMuted() bool
}

// SaveFunc writes samples to a WAV file at path
type SaveFunc func(path string, params audio.Params, samples []int16) error

// Options configures the calibrator model
type Options struct {
	// Source is the path of the recording, used to name saved files
	Source string

	// OutputDir receives saved extractions
	OutputDir string

	// Player is optional; without it the play key reports an error
	Player Player

	// Volume is optional; when nil and Player implements VolumeControl,
	// the player is used
	Volume VolumeControl

	// Save writes extractions; required for the save key
	Save SaveFunc
}

// Model represents the TUI state
type Model struct {
	session *calibrate.Session
	opts    Options

	// Playback
	playing  bool
	stopping bool
	cancel   context.CancelFunc
	events   <-chan tea.Msg
	segments calibrate.SegmentSet
	cursor   int // source sample under the playhead, -1 when idle

	// Spectrogram pane, built on first use
	showSpectrogram bool
	spectrogram     *loudness.Spectrogram

	status string

	// Dimensions
	width  int
	height int
}

// progressMsg reports how many extracted samples have been played
type progressMsg struct {
	played int
}

// playbackDoneMsg is sent once playback stops for any reason
type playbackDoneMsg struct {
	err error
}

// savedMsg reports the outcome of a save
type savedMsg struct {
	path string
	err  error
}

// spectrogramMsg carries a spectrogram built in the background
type spectrogramMsg struct {
	spec loudness.Spectrogram
	err  error
}

// NewModel creates a calibrator over session
func NewModel(session *calibrate.Session, opts Options) Model {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Volume == nil {
		if vc, ok := opts.Player.(VolumeControl); ok {
			opts.Volume = vc
		}
	}
	return Model{
		session: session,
		opts:    opts,
		cursor:  -1,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case progressMsg:
		if pos, ok := m.segments.SourcePosition(msg.played); ok {
			m.cursor = pos
		}
		return m, waitForEvent(m.events)

	case playbackDoneMsg:
		m.finishPlayback(msg.err)

	case spectrogramMsg:
		if msg.err != nil {
			slog.Error("Failed to build spectrogram", "error", msg.err)
			m.status = fmt.Sprintf("Spectrogram failed: %v", msg.err)
			m.showSpectrogram = false
		} else {
			m.spectrogram = &msg.spec
			m.status = ""
		}

	case savedMsg:
		if msg.err != nil {
			slog.Error("Failed to save extraction", "path", msg.path, "error", msg.err)
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
		} else {
			slog.Info("Saved extraction", "path", msg.path)
			m.status = "Saved " + msg.path
		}
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "right":
		m.nudge(m.step(fineSteps))
	case "left":
		m.nudge(-m.step(fineSteps))
	case "shift+right", "pgup":
		m.nudge(m.step(coarseSteps))
	case "shift+left", "pgdown":
		m.nudge(-m.step(coarseSteps))
	case "r":
		t := m.session.ResetThreshold()
		m.status = fmt.Sprintf("Threshold reset to %.2f dB", t)
	case "a":
		t, err := m.session.ComputeOptimalThreshold()
		if errors.Is(err, calibrate.ErrNotImplemented) {
			m.status = "Auto threshold: feature unavailable"
		} else if err != nil {
			m.status = fmt.Sprintf("Auto threshold failed: %v", err)
		} else {
			m.session.SetThreshold(t)
			m.status = fmt.Sprintf("Auto threshold %.2f dB", t)
		}
	case "p":
		return m.togglePlayback()
	case "s":
		return m, m.save()
	case "+", "=":
		m.changeVolume(volumeStep)
	case "-":
		m.changeVolume(-volumeStep)
	case "m":
		m.toggleMute()
	case "g":
		return m.toggleSpectrogram()
	}

	return m, nil
}

// step returns the threshold increment for the given slider resolution
func (m Model) step(divisions float64) float64 {
	low, high := m.session.Range()
	if high <= low {
		return fallbackStep
	}
	return (high - low) / divisions
}

func (m *Model) nudge(delta float64) {
	m.session.SetThreshold(m.session.Threshold() + delta)
	m.status = ""
}

// changeVolume moves the playback volume by delta percent
func (m *Model) changeVolume(delta int) {
	if m.opts.Volume == nil {
		m.status = "Volume control unavailable"
		return
	}
	m.opts.Volume.SetVolume(m.opts.Volume.Volume() + delta)
	m.status = fmt.Sprintf("Volume %d%%", m.opts.Volume.Volume())
}

func (m *Model) toggleMute() {
	if m.opts.Volume == nil {
		m.status = "Volume control unavailable"
		return
	}
	muted := !m.opts.Volume.IsMuted()
	m.opts.Volume.SetMuted(muted)
	if muted {
		m.status = "Muted"
	} else {
		m.status = "Unmuted"
	}
}

// toggleSpectrogram shows or hides the spectrogram pane, building it the
// first time it is shown
func (m Model) toggleSpectrogram() (tea.Model, tea.Cmd) {
	m.showSpectrogram = !m.showSpectrogram
	if !m.showSpectrogram || m.spectrogram != nil {
		return m, nil
	}

	m.status = "Building spectrogram..."
	samples := m.session.Samples()
	frameRate := m.session.Params().FrameRate

	return m, func() tea.Msg {
		spec, err := loudness.BuildSpectrogram(loudness.Normalize(samples),
			loudness.DefaultNFFT, loudness.DefaultOverlap, frameRate)
		return spectrogramMsg{spec: spec, err: err}
	}
}

// togglePlayback starts playback of the above-threshold audio, or stops the
// current one
func (m Model) togglePlayback() (tea.Model, tea.Cmd) {
	if m.playing {
		if !m.stopping && m.cancel != nil {
			m.cancel()
			m.stopping = true
			m.status = "Stopping playback..."
		}
		return m, nil
	}

	if m.opts.Player == nil {
		m.status = "Playback unavailable: no audio output"
		return m, nil
	}

	samples, segments := m.session.ExtractAboveThreshold()
	if len(samples) == 0 {
		m.status = "Nothing above threshold"
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, 8)

	p := m.opts.Player
	params := m.session.Params()
	go func() {
		err := p.Play(ctx, samples, params, func(played int) {
			select {
			case events <- progressMsg{played: played}:
			default:
				// UI is behind; the next chunk will update the cursor
			}
		})
		events <- playbackDoneMsg{err: err}
	}()

	m.playing = true
	m.stopping = false
	m.cancel = cancel
	m.events = events
	m.segments = segments
	m.cursor = segments[0].Start
	m.status = fmt.Sprintf("Playing %s above threshold", segments.Duration(params.FrameRate))

	slog.Debug("Playback requested", "segments", len(segments), "samples", len(samples))

	return m, waitForEvent(events)
}

func (m *Model) finishPlayback(err error) {
	if m.cancel != nil {
		m.cancel()
	}
	m.playing = false
	m.stopping = false
	m.cancel = nil
	m.events = nil
	m.cursor = -1

	switch {
	case err == nil:
		m.status = "Playback finished"
	case errors.Is(err, context.Canceled):
		m.status = "Playback stopped"
	default:
		slog.Error("Playback failed", "error", err)
		m.status = fmt.Sprintf("Playback failed: %v", err)
	}
}

// save writes the above-threshold audio next to the configured output dir
func (m Model) save() tea.Cmd {
	if m.opts.Save == nil {
		return nil
	}

	samples, _ := m.session.ExtractAboveThreshold()
	params := m.session.Params()
	path := filepath.Join(m.opts.OutputDir, calibrate.OutputName(m.opts.Source, m.session.Threshold()))
	save := m.opts.Save

	return func() tea.Msg {
		return savedMsg{path: path, err: save(path, params, samples)}
	}
}

// waitForEvent blocks on the playback event channel
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-events
	}
}
