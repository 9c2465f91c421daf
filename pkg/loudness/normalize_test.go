// ABOUTME: Tests for sample normalization
// ABOUTME: Verifies the 2^15 scaling of 16-bit samples
package loudness

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float64
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
		{"max", 32767, 32767.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize([]int16{tt.input})
			if out[0] != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, out[0])
			}
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	out := Normalize(nil)
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d values", len(out))
	}
}
