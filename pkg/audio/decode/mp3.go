// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to 16-bit stereo samples
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/alon/egloorator/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts a whole MP3 stream to int16 samples. The decoder always
// outputs stereo, so mono files come back with duplicated channels.
func (d *MP3Decoder) Decode(r io.ReadSeeker) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	return audio.Buffer{
		Samples: DecodePCM16(data),
		Params: audio.Params{
			FrameRate:   decoder.SampleRate(),
			Channels:    2,
			SampleWidth: audio.SampleWidth16,
		},
	}, nil
}
