// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM WAV files via go-audio/wav
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/alon/egloorator/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode reads every frame of an integer PCM WAV file.
// Samples wider than 16 bits are rescaled to 16 bits.
func (d *WAVDecoder) Decode(r io.ReadSeeker) (audio.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("not a valid WAV file")
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return audio.Buffer{}, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return audio.Buffer{}, fmt.Errorf("%w: WAV bit depth %d (supported: 16, 24, 32)", ErrUnsupportedFormat, bitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	samples := make([]int16, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = audio.SampleToInt16(int32(v), bitDepth)
	}

	return audio.Buffer{
		Samples: samples,
		Params: audio.Params{
			FrameRate:   int(dec.SampleRate),
			Channels:    int(dec.NumChans),
			SampleWidth: audio.SampleWidth16,
		},
	}, nil
}
