// ABOUTME: PCM audio encoder
// ABOUTME: Encodes int16 samples to 16-bit or 24-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/alon/egloorator/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder for the sample width in params
func NewPCM(params audio.Params) (Encoder, error) {
	bitDepth := params.BitDepth()
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}

	return &PCMEncoder{
		bitDepth: bitDepth,
	}, nil
}

// Encode converts int16 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []int16) ([]byte, error) {
	if e.bitDepth == 24 {
		// 24-bit PCM: 3 bytes per sample
		output := make([]byte, len(samples)*3)
		for i, sample := range samples {
			bytes := audio.SampleTo24Bit(audio.SampleFromInt16(sample))
			output[i*3] = bytes[0]
			output[i*3+1] = bytes[1]
			output[i*3+2] = bytes[2]
		}
		return output, nil
	}

	return EncodePCM16(samples), nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// EncodePCM16 converts samples to little-endian 16-bit bytes
func EncodePCM16(samples []int16) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(sample))
	}
	return output
}
