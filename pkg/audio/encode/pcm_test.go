// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit and 24-bit PCM encoding
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/alon/egloorator/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		params      audio.Params
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid 16-bit PCM",
			params:  audio.Params{FrameRate: 48000, Channels: 2, SampleWidth: 2},
			wantErr: false,
		},
		{
			name:    "valid 24-bit PCM",
			params:  audio.Params{FrameRate: 48000, Channels: 2, SampleWidth: 3},
			wantErr: false,
		},
		{
			name:        "unsupported bit depth",
			params:      audio.Params{FrameRate: 48000, Channels: 2, SampleWidth: 4},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.params)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPCM() unexpected error = %v", err)
			}
			if encoder == nil {
				t.Errorf("NewPCM() returned nil encoder")
			}
		})
	}
}

func TestPCMEncoder_Encode16Bit(t *testing.T) {
	encoder, err := NewPCM(audio.Params{FrameRate: 44100, Channels: 1, SampleWidth: 2})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	samples := []int16{0, 32767, -32768, 0x1234, -0x5678}

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if len(output) != len(samples)*2 {
		t.Errorf("Encode() output size = %d, want %d", len(output), len(samples)*2)
	}

	for i, expected := range samples {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != expected {
			t.Errorf("Sample %d: got %d, want %d", i, actual, expected)
		}
	}
}

func TestPCMEncoder_Encode24Bit(t *testing.T) {
	encoder, err := NewPCM(audio.Params{FrameRate: 48000, Channels: 2, SampleWidth: 3})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	samples := []int16{0, 32767, -32768, 0x1234}

	output, err := encoder.Encode(samples)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	if len(output) != len(samples)*3 {
		t.Errorf("Encode() output size = %d, want %d", len(output), len(samples)*3)
	}

	for i, sample := range samples {
		actual := audio.SampleFrom24Bit([3]byte{output[i*3], output[i*3+1], output[i*3+2]})
		if actual != int32(sample)<<8 {
			t.Errorf("Sample %d: got %d, want %d", i, actual, int32(sample)<<8)
		}
	}
}

func TestEncodePCM16_Empty(t *testing.T) {
	if out := EncodePCM16(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(out))
	}
}
