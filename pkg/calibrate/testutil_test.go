// ABOUTME: Shared fixtures for calibration tests
// ABOUTME: Generates deterministic tone, silence and ramp recordings
package calibrate

import (
	"math"

	"github.com/alon/egloorator/pkg/audio"
)

var monoParams = audio.Params{FrameRate: 44100, Channels: 1, SampleWidth: 2}

// fill returns n copies of value
func fill(value int16, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// toneBursts builds a recording of alternating tone and silence blocks,
// each block blockSize samples long. Block i is loud when loud[i] is true.
func toneBursts(blockSize int, loud []bool) []int16 {
	out := make([]int16, 0, blockSize*len(loud))
	for b, on := range loud {
		for i := 0; i < blockSize; i++ {
			if !on {
				out = append(out, 0)
				continue
			}
			phase := 2 * math.Pi * 440 * float64(b*blockSize+i) / 44100
			out = append(out, int16(8000*math.Sin(phase)))
		}
	}
	return out
}

// ramp returns samples whose magnitude grows with the window index, so every
// window has a distinct level.
func ramp(windows, windowSize int) []int16 {
	out := make([]int16, 0, windows*windowSize)
	for w := 0; w < windows; w++ {
		out = append(out, fill(int16(100*(w+1)), windowSize)...)
	}
	return out
}
