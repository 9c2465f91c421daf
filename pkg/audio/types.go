// ABOUTME: Audio type definitions
// ABOUTME: Defines recording parameters, sample buffers and bit-depth conversion
package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// Bytes per sample for the int16 buffers used throughout
	SampleWidth16 = 2

	// Bytes per packed 24-bit sample
	SampleWidth24 = 3
)

// ErrInvalidParams is returned when recording parameters are out of range
var ErrInvalidParams = errors.New("audio: invalid params")

var validate = validator.New()

// Params describes how to reinterpret or reserialize a sample buffer
type Params struct {
	FrameRate   int `validate:"gt=0" json:"frame_rate"`
	Channels    int `validate:"gt=0" json:"channel_count"`
	SampleWidth int `validate:"gt=0,lte=4" json:"sample_width_bytes"`
}

// Validate checks that every field is positive
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// BitDepth returns the sample width in bits
func (p Params) BitDepth() int {
	return p.SampleWidth * 8
}

// Buffer holds interleaved 16-bit PCM samples and the params needed to save them
type Buffer struct {
	Samples []int16
	Params  Params
}

// Frames returns the number of frames (samples per channel)
func (b Buffer) Frames() int {
	if b.Params.Channels <= 0 {
		return len(b.Samples)
	}
	return len(b.Samples) / b.Params.Channels
}

// Duration returns the playback length of the buffer
func (b Buffer) Duration() time.Duration {
	if b.Params.FrameRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.Params.FrameRate)
}

// SampleToInt16 rescales a sample of the given bit depth to 16 bits
func SampleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	default:
		return int16(sample << (16 - bitDepth))
	}
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian),
// clamping values outside the 24-bit range
func SampleTo24Bit(sample int32) [3]byte {
	sample = max(Min24Bit, min(Max24Bit, sample))
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
