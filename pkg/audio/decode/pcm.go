// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless little-endian 16-bit or 24-bit PCM
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/alon/egloorator/pkg/audio"
)

// PCMDecoder decodes raw PCM audio
type PCMDecoder struct {
	params audio.Params
}

// NewPCM creates a raw PCM decoder. Headerless data carries no params, so
// they are supplied here.
func NewPCM(params audio.Params) (Decoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.SampleWidth != audio.SampleWidth16 && params.SampleWidth != audio.SampleWidth24 {
		return nil, fmt.Errorf("%w: raw sample width %d (supported: 2, 3)", ErrUnsupportedFormat, params.SampleWidth)
	}

	return &PCMDecoder{
		params: params,
	}, nil
}

// Decode converts all remaining PCM bytes to int16 samples. 24-bit data is
// rescaled to 16 bits and reported with a sample width of 2.
func (d *PCMDecoder) Decode(r io.ReadSeeker) (audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read PCM data: %w", err)
	}

	params := d.params
	params.SampleWidth = audio.SampleWidth16

	if d.params.SampleWidth == audio.SampleWidth24 {
		return audio.Buffer{Samples: DecodePCM24(data), Params: params}, nil
	}

	return audio.Buffer{
		Samples: DecodePCM16(data),
		Params:  params,
	}, nil
}

// DecodePCM24 converts little-endian packed 24-bit bytes to 16-bit samples.
// Trailing bytes that do not form a whole sample are ignored.
func DecodePCM24(data []byte) []int16 {
	numSamples := len(data) / 3
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		v := audio.SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
		samples[i] = audio.SampleToInt16(v, 24)
	}
	return samples
}

// DecodePCM16 converts little-endian 16-bit bytes to samples. A trailing odd
// byte is ignored.
func DecodePCM16(data []byte) []int16 {
	numSamples := len(data) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
