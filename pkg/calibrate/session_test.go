// ABOUTME: Tests for the calibration session
// ABOUTME: Covers creation errors, threshold state and extraction
package calibrate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/loudness"
)

func TestNewSession_EmptyInput(t *testing.T) {
	session, err := NewSession(nil, monoParams)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Nil(t, session)
}

func TestNewSession_InvalidFrameRate(t *testing.T) {
	_, err := NewSession(fill(1, 10), audio.Params{FrameRate: 0, Channels: 1, SampleWidth: 2})
	assert.ErrorIs(t, err, loudness.ErrInvalidWindowSize)

	_, err = NewSession(fill(1, 10), audio.Params{FrameRate: 0, Channels: 1, SampleWidth: 2}, WithWindowSize(5))
	assert.ErrorIs(t, err, loudness.ErrInvalidFrameRate)
}

func TestNewSession_Defaults(t *testing.T) {
	samples := append(fill(16384, 4410), fill(0, 4410)...)

	session, err := NewSession(samples, monoParams)
	require.NoError(t, err)

	assert.Equal(t, 4410, session.WindowSize())
	assert.Equal(t, 2, session.Curve().Len())
	assert.Equal(t, monoParams, session.Params())
	assert.Len(t, session.Samples(), 8820)

	low, high := session.Range()
	assert.InDelta(t, (low+high)/2, session.Threshold(), 1e-9)
	assert.InDelta(t, -353.01, session.Threshold(), 0.01)
}

func TestNewSession_WindowSizeOption(t *testing.T) {
	session, err := NewSession(fill(1000, 100), monoParams, WithWindowSize(30))
	require.NoError(t, err)

	assert.Equal(t, 30, session.WindowSize())
	assert.Equal(t, 4, session.Curve().Len())

	session, err = NewSession(fill(1000, 100), monoParams, WithWindowSize(0))
	require.NoError(t, err)
	assert.Equal(t, 4410, session.WindowSize())
}

func TestSession_SetAndResetThreshold(t *testing.T) {
	session, err := NewSession(ramp(10, 100), monoParams, WithWindowSize(100))
	require.NoError(t, err)

	midpoint := session.Threshold()

	session.SetThreshold(12.5)
	assert.Equal(t, 12.5, session.Threshold())

	// Out-of-range values are kept verbatim
	session.SetThreshold(-1e6)
	assert.Equal(t, -1e6, session.Threshold())

	assert.Equal(t, midpoint, session.ResetThreshold())
	assert.Equal(t, midpoint, session.Threshold())
}

func TestSession_ComputeOptimalThreshold(t *testing.T) {
	session, err := NewSession(ramp(10, 100), monoParams, WithWindowSize(100))
	require.NoError(t, err)

	session.SetThreshold(-42)
	value, err := session.ComputeOptimalThreshold()

	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, -42.0, value)
	assert.Equal(t, -42.0, session.Threshold())
}

func TestSession_ExtractAboveThreshold(t *testing.T) {
	samples := append(fill(16384, 4410), fill(0, 4410)...)
	session, err := NewSession(samples, monoParams)
	require.NoError(t, err)

	session.SetThreshold(-100)
	out, segments := session.ExtractAboveThreshold()

	assert.Equal(t, SegmentSet{{0, 4410}}, segments)
	assert.Len(t, out, 4410)
	assert.Equal(t, fill(16384, 4410), out)
}

func TestSession_ExtractExtremes(t *testing.T) {
	samples := toneBursts(4410, []bool{true, false, true})
	session, err := NewSession(samples, monoParams)
	require.NoError(t, err)

	session.SetThreshold(math.Inf(1))
	out, segments := session.ExtractAboveThreshold()
	assert.Empty(t, segments)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	session.SetThreshold(math.Inf(-1))
	out, segments = session.ExtractAboveThreshold()
	assert.Len(t, segments, 3)
	assert.Equal(t, samples, out)
}

func TestSession_SilentRecording(t *testing.T) {
	session, err := NewSession(fill(0, 44100), monoParams)
	require.NoError(t, err)

	low, high := session.Range()
	assert.Equal(t, loudness.SilenceLevel, low)
	assert.Equal(t, loudness.SilenceLevel, high)
	assert.Equal(t, loudness.SilenceLevel, session.Threshold())

	// Every window equals the threshold, so nothing is strictly above it
	out, segments := session.ExtractAboveThreshold()
	assert.Empty(t, segments)
	assert.Empty(t, out)
}
