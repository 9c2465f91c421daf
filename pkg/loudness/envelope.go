// ABOUTME: Loudness envelope builder
// ABOUTME: Computes per-window RMS level in dB and the aligned time axis
package loudness

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	// Epsilon keeps log10 finite for fully silent windows
	Epsilon = 1e-35

	// DefaultWindowDuration is the analysis window used when none is given
	DefaultWindowDuration = 100 * time.Millisecond
)

var (
	// ErrInvalidWindowSize is returned for a non-positive window size
	ErrInvalidWindowSize = errors.New("loudness: window size must be positive")
	// ErrInvalidFrameRate is returned for a non-positive frame rate
	ErrInvalidFrameRate = errors.New("loudness: frame rate must be positive")
)

// SilenceLevel is the level reported for a window of all-zero samples
var SilenceLevel = 20 * math.Log10(Epsilon)

// Point is one window of the envelope
type Point struct {
	Time  float64 `json:"time"`     // Window start in seconds
	Level float64 `json:"level_db"` // RMS level in dB
}

// Curve is the loudness envelope of a recording, one Point per window
type Curve struct {
	Points     []Point `json:"points"`
	WindowSize int     `json:"window_size"`
	FrameRate  int     `json:"frame_rate"`
}

// WindowSizeFor returns the number of samples covering d at frameRate, rounded
func WindowSizeFor(d time.Duration, frameRate int) int {
	return int(math.Round(d.Seconds() * float64(frameRate)))
}

// DefaultWindowSize returns round(0.1 * frameRate)
func DefaultWindowSize(frameRate int) int {
	return WindowSizeFor(DefaultWindowDuration, frameRate)
}

// WindowCount returns ceil(total / windowSize)
func WindowCount(total, windowSize int) int {
	if total <= 0 || windowSize <= 0 {
		return 0
	}
	return (total + windowSize - 1) / windowSize
}

// BuildEnvelope computes the loudness curve of normalized samples.
//
// Power is the mean of squared amplitude over the samples actually in the
// window, so a short trailing window is not biased low. The level is
// 20*log10(rms + Epsilon).
func BuildEnvelope(normalized []float64, windowSize, frameRate int) (Curve, error) {
	if windowSize <= 0 {
		return Curve{}, ErrInvalidWindowSize
	}
	if frameRate <= 0 {
		return Curve{}, ErrInvalidFrameRate
	}

	n := WindowCount(len(normalized), windowSize)
	points := make([]Point, n)
	step := float64(windowSize) / float64(frameRate)

	for i := 0; i < n; i++ {
		start := i * windowSize
		end := min(start+windowSize, len(normalized))
		window := normalized[start:end]

		power := floats.Dot(window, window) / float64(len(window))
		rms := math.Sqrt(power)

		points[i] = Point{
			Time:  float64(i) * step,
			Level: 20 * math.Log10(rms+Epsilon),
		}
	}

	return Curve{
		Points:     points,
		WindowSize: windowSize,
		FrameRate:  frameRate,
	}, nil
}

// Len returns the number of windows
func (c Curve) Len() int {
	return len(c.Points)
}

// Levels returns the dB level of every window
func (c Curve) Levels() []float64 {
	levels := make([]float64, len(c.Points))
	for i, p := range c.Points {
		levels[i] = p.Level
	}
	return levels
}

// Times returns the start time of every window in seconds
func (c Curve) Times() []float64 {
	times := make([]float64, len(c.Points))
	for i, p := range c.Points {
		times[i] = p.Time
	}
	return times
}

// Range returns the lowest and highest level. An empty curve returns 0, 0.
func (c Curve) Range() (low, high float64) {
	if len(c.Points) == 0 {
		return 0, 0
	}
	levels := c.Levels()
	return floats.Min(levels), floats.Max(levels)
}

// Midpoint returns (max + min) / 2
func (c Curve) Midpoint() float64 {
	low, high := c.Range()
	return (high + low) / 2
}

