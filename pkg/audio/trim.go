// ABOUTME: Peak-centred truncation of long recordings
// ABOUTME: Keeps a bounded window of frames around the loudest sample
package audio

import "time"

// PeakFrame returns the frame index holding the largest absolute sample value.
// Ties resolve to the earliest frame. Returns 0 for an empty buffer.
func PeakFrame(b Buffer) int {
	channels := b.Params.Channels
	if channels <= 0 {
		channels = 1
	}

	peakIdx := 0
	peakAbs := -1
	for i, s := range b.Samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peakAbs {
			peakAbs = v
			peakIdx = i
		}
	}
	return peakIdx / channels
}

// TrimAroundPeak returns at most maxDuration of frames centred on the peak
// frame, clamped to the buffer bounds. Shorter buffers and non-positive
// durations return b unchanged. The returned buffer shares b's backing array.
func TrimAroundPeak(b Buffer, maxDuration time.Duration) Buffer {
	if maxDuration <= 0 || b.Params.FrameRate <= 0 {
		return b
	}

	channels := b.Params.Channels
	if channels <= 0 {
		channels = 1
	}

	maxFrames := int(maxDuration.Seconds() * float64(b.Params.FrameRate))
	total := b.Frames()
	if maxFrames <= 0 || total <= maxFrames {
		return b
	}

	start := PeakFrame(b) - maxFrames/2
	if start < 0 {
		start = 0
	}
	if start+maxFrames > total {
		start = total - maxFrames
	}

	return Buffer{
		Samples: b.Samples[start*channels : (start+maxFrames)*channels],
		Params:  b.Params,
	}
}
