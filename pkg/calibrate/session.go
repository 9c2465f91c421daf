// ABOUTME: Calibration session orchestrating the loudness pipeline
// ABOUTME: Caches the curve once and tracks the operator's threshold
package calibrate

import (
	"fmt"

	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/loudness"
)

// Option configures a Session
type Option func(*sessionOptions)

type sessionOptions struct {
	windowSize int
}

// WithWindowSize overrides the default 100 ms analysis window.
// Non-positive values keep the default.
func WithWindowSize(samples int) Option {
	return func(o *sessionOptions) {
		o.windowSize = samples
	}
}

// Session holds one recording, its loudness curve and the current threshold.
// It is not safe for concurrent use.
type Session struct {
	samples    []int16
	params     audio.Params
	windowSize int
	curve      loudness.Curve
	threshold  float64
}

// NewSession builds the loudness curve of samples and sets the threshold to
// the midpoint of its level range. The samples are borrowed, not copied, and
// must not be modified while the Session is in use.
func NewSession(samples []int16, params audio.Params, opts ...Option) (*Session, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	windowSize := o.windowSize
	if windowSize <= 0 {
		windowSize = loudness.DefaultWindowSize(params.FrameRate)
	}

	curve, err := loudness.BuildEnvelope(loudness.Normalize(samples), windowSize, params.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("failed to build loudness curve: %w", err)
	}

	s := &Session{
		samples:    samples,
		params:     params,
		windowSize: windowSize,
		curve:      curve,
	}
	s.ResetThreshold()

	return s, nil
}

// Curve returns the cached loudness curve
func (s *Session) Curve() loudness.Curve {
	return s.curve
}

// Params returns the recording parameters
func (s *Session) Params() audio.Params {
	return s.params
}

// Samples returns the borrowed sample buffer
func (s *Session) Samples() []int16 {
	return s.samples
}

// WindowSize returns the number of samples per analysis window
func (s *Session) WindowSize() int {
	return s.windowSize
}

// Range returns the lowest and highest window level
func (s *Session) Range() (low, high float64) {
	return s.curve.Range()
}

// Threshold returns the current threshold in dB
func (s *Session) Threshold() float64 {
	return s.threshold
}

// SetThreshold stores value as-is. Values outside Range are legal and select
// every window or none.
func (s *Session) SetThreshold(value float64) {
	s.threshold = value
}

// ResetThreshold sets the threshold back to the midpoint of Range and returns it
func (s *Session) ResetThreshold() float64 {
	s.threshold = s.curve.Midpoint()
	return s.threshold
}

// ComputeOptimalThreshold is reserved for an automatic threshold heuristic.
// It always returns ErrNotImplemented and leaves the threshold untouched.
func (s *Session) ComputeOptimalThreshold() (float64, error) {
	return s.threshold, ErrNotImplemented
}

// Segments returns the windows above the current threshold
func (s *Session) Segments() SegmentSet {
	return SegmentsAbove(s.curve, s.threshold, s.windowSize, len(s.samples))
}

// ExtractAboveThreshold returns the concatenated above-threshold samples and
// the segments they were taken from.
func (s *Session) ExtractAboveThreshold() ([]int16, SegmentSet) {
	segments := s.Segments()
	return Extract(s.samples, segments), segments
}
