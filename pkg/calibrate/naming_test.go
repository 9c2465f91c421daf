// ABOUTME: Tests for extraction file naming
// ABOUTME: Checks extension stripping and threshold formatting
package calibrate

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/audio/encode"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		source    string
		threshold float64
		want      string
	}{
		{"speech.wav", -20, "overwritten_speech_-20.wav"},
		{"/data/takes/speech.wav", -20.5, "overwritten_speech_-20.5.wav"},
		{"noext", 0, "overwritten_noext_0.wav"},
		{"take.1.flac", -353.01, "overwritten_take.1_-353.01.wav"},
		{"speech.wav", 1e300, "overwritten_speech_1e+300.wav"},
		{"speech.wav", -1e300, "overwritten_speech_-1e+300.wav"},
		{"speech.wav", math.Inf(1), "overwritten_speech_+Inf.wav"},
		{"speech.wav", math.Inf(-1), "overwritten_speech_-Inf.wav"},
		{"speech.wav", 1e-7, "overwritten_speech_1e-07.wav"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.source, tt.threshold), tt.source)
	}
}

func TestOutputName_OutOfRangeThresholdSaves(t *testing.T) {
	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	session, err := NewSession(toneBursts(100, []bool{true, false}), params, WithWindowSize(100))
	require.NoError(t, err)

	session.SetThreshold(1e300)
	samples, segments := session.ExtractAboveThreshold()
	assert.Empty(t, segments)

	name := OutputName("speech.wav", session.Threshold())
	assert.LessOrEqual(t, len(name), 255)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, encode.SaveWAV(path, params, samples))
}
