// ABOUTME: Integer PCM to floating-point amplitude conversion
// ABOUTME: Maps signed 16-bit samples onto [-1, 1]
package loudness

// FullScale16 is the magnitude of the most negative signed 16-bit sample
const FullScale16 = 32768.0

// Normalize divides every sample by 2^15
func Normalize(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / FullScale16
	}
	return out
}
