// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files frame by frame to interleaved 16-bit samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/alon/egloorator/pkg/audio"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode parses every FLAC frame and interleaves the subframes
func (d *FLACDecoder) Decode(r io.ReadSeeker) (audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	samples := make([]int16, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.SampleToInt16(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return audio.Buffer{
		Samples: samples,
		Params: audio.Params{
			FrameRate:   int(info.SampleRate),
			Channels:    channels,
			SampleWidth: audio.SampleWidth16,
		},
	}, nil
}
