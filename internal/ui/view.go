// ABOUTME: Rendering for the threshold calibrator
// ABOUTME: Draws the loudness curve as a column plot with the threshold line
package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alon/egloorator/pkg/loudness"
)

const (
	defaultPlotWidth  = 80
	defaultPlotHeight = 16
	minPlotHeight     = 4

	// rows used by the title, info block and help
	chromeRows = 9

	// spectrogramRange is the span in dB shaded below the loudest bin
	spectrogramRange = 80.0
)

// spectrogramShades runs from quietest to loudest
var spectrogramShades = []string{" ", "░", "▒", "▓", "█"}

// cell is one character of the curve plot
type cell int

const (
	cellEmpty cell = iota
	cellBelow
	cellAbove
	cellThreshold
	cellCursor
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	aboveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	belowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	thresholdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	spectrumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Egloorator"))
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(filepath.Base(m.opts.Source)))
	b.WriteString("\n\n")

	width, height := m.plotSize()
	if m.showSpectrogram && m.spectrogram != nil {
		curveHeight := max(height/2, minPlotHeight)
		b.WriteString(m.renderCurve(width, curveHeight))
		b.WriteString(m.renderSpectrogram(width, max(height-curveHeight-1, minPlotHeight)))
	} else {
		b.WriteString(m.renderCurve(width, height))
	}
	b.WriteString("\n")
	b.WriteString(m.renderInfo())

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("←/→:Fine  shift+←/→ pgup/pgdn:Coarse  r:Reset  a:Auto  p:Play  +/-:Volume  m:Mute  g:Spectrogram  s:Save  q:Quit"))

	return b.String()
}

// renderInfo renders the threshold and selection summary
func (m Model) renderInfo() string {
	low, high := m.session.Range()
	segments := m.session.Segments()
	params := m.session.Params()
	curve := m.session.Curve()

	var b strings.Builder

	b.WriteString(headerStyle.Render("Threshold: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f dB", m.session.Threshold())))
	b.WriteString(headerStyle.Render("   Range: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f .. %.2f dB", low, high)))
	b.WriteString("\n")

	total := time.Duration(len(m.session.Samples())) * time.Second / time.Duration(params.FrameRate)
	b.WriteString(headerStyle.Render("Selected: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d/%d windows, %s of %s",
		len(segments), curve.Len(),
		segments.Duration(params.FrameRate).Round(time.Millisecond),
		total.Round(time.Millisecond))))
	b.WriteString("\n")

	if m.opts.Volume != nil {
		b.WriteString(headerStyle.Render("Volume: "))
		if m.opts.Volume.IsMuted() {
			b.WriteString(valueStyle.Render("muted"))
		} else {
			b.WriteString(valueStyle.Render(fmt.Sprintf("%d%%", m.opts.Volume.Volume())))
		}
		b.WriteString("   ")
	}
	if m.cursor >= 0 {
		pos := time.Duration(m.cursor) * time.Second / time.Duration(params.FrameRate)
		b.WriteString(headerStyle.Render("Playing at: "))
		b.WriteString(valueStyle.Render(pos.Round(time.Millisecond).String()))
	}
	b.WriteString("\n")

	return b.String()
}

// plotSize returns the area available for plots
func (m Model) plotSize() (width, height int) {
	width = defaultPlotWidth
	if m.width > 0 {
		width = m.width
	}
	height = defaultPlotHeight
	if m.height > 0 {
		height = max(m.height-chromeRows, minPlotHeight)
	}
	return width, height
}

// renderCurve renders the loudness curve
func (m Model) renderCurve(width, height int) string {
	cursorWindow := -1
	if m.cursor >= 0 {
		cursorWindow = m.cursor / m.session.WindowSize()
	}

	low, high := m.session.Range()
	grid := plotCells(m.session.Curve().Levels(), low, high, m.session.Threshold(), width, height, cursorWindow)

	var b strings.Builder
	for _, row := range grid {
		for _, c := range row {
			b.WriteString(renderCell(c))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(c cell) string {
	switch c {
	case cellBelow:
		return belowStyle.Render("█")
	case cellAbove:
		return aboveStyle.Render("█")
	case cellThreshold:
		return thresholdStyle.Render("─")
	case cellCursor:
		return cursorStyle.Render("│")
	default:
		return " "
	}
}

// plotCells lays out levels as columns of height rows, top row first.
// Windows are bucketed into at most width columns and each column shows the
// loudest window in its bucket. cursorWindow marks one window index, or -1.
func plotCells(levels []float64, low, high, threshold float64, width, height, cursorWindow int) [][]cell {
	n := len(levels)
	if n == 0 || width <= 0 || height <= 0 {
		return nil
	}

	cols := min(width, n)
	scale := func(v float64) int {
		if high <= low {
			return height - 1
		}
		r := int(math.Round((v - low) / (high - low) * float64(height-1)))
		return max(0, min(height-1, r))
	}

	cursorCol := -1
	if cursorWindow >= 0 && cursorWindow < n {
		cursorCol = cursorWindow * cols / n
	}
	thresholdRow := scale(threshold)

	grid := make([][]cell, height)
	for r := range grid {
		grid[r] = make([]cell, cols)
	}

	for c := 0; c < cols; c++ {
		from, to := c*n/cols, (c+1)*n/cols
		level := levels[from]
		for _, v := range levels[from+1 : to] {
			level = max(level, v)
		}

		kind := cellBelow
		if level > threshold {
			kind = cellAbove
		}
		top := scale(level)

		for r := 0; r < height; r++ {
			fromBottom := height - 1 - r
			switch {
			case c == cursorCol:
				grid[r][c] = cellCursor
			case fromBottom <= top:
				grid[r][c] = kind
			case fromBottom == thresholdRow:
				grid[r][c] = cellThreshold
			}
		}
	}

	return grid
}

// renderSpectrogram renders the spectrogram pane under a frequency label
func (m Model) renderSpectrogram(width, height int) string {
	spec := *m.spectrogram

	var b strings.Builder
	top := 0.0
	if n := len(spec.Freqs); n > 0 {
		top = spec.Freqs[n-1]
	}
	b.WriteString(headerStyle.Render("Spectrogram "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("0 .. %.1f kHz", top/1000)))
	b.WriteString("\n")

	for _, row := range shadeCells(spec, width, height) {
		for _, shade := range row {
			b.WriteString(spectrumStyle.Render(spectrogramShades[shade]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shadeCells lays out a spectrogram as at most height rows of at most width
// columns, highest frequency first. Frames and bins are bucketed and each
// cell shows the loudest level in its bucket as an index into
// spectrogramShades, spanning spectrogramRange dB below the loudest bin.
func shadeCells(spec loudness.Spectrogram, width, height int) [][]int {
	frames := spec.Len()
	if frames == 0 || width <= 0 || height <= 0 {
		return nil
	}
	bins := len(spec.Power[0])

	cols := min(width, frames)
	rows := min(height, bins)

	low, high := spec.Range()
	floor := max(low, high-spectrogramRange)
	top := len(spectrogramShades) - 1
	shade := func(v float64) int {
		if high <= floor {
			return 0
		}
		s := int(math.Round((v - floor) / (high - floor) * float64(top)))
		return max(0, min(top, s))
	}

	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)

		band := rows - 1 - r
		binFrom, binTo := band*bins/rows, (band+1)*bins/rows

		for c := 0; c < cols; c++ {
			level := math.Inf(-1)
			for _, frame := range spec.Power[c*frames/cols : (c+1)*frames/cols] {
				for _, v := range frame[binFrom:binTo] {
					level = max(level, v)
				}
			}
			grid[r][c] = shade(level)
		}
	}

	return grid
}
