// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Params, Buffer types and sample conversion functions
// Package audio provides the recording types shared by the loaders, the
// calibration core and the playback output.
//
//   - Params: frame rate, channel count and sample width of a recording
//   - Buffer: interleaved 16-bit PCM samples together with their Params
//
// It also provides utilities for converting between sample formats and for
// trimming long recordings around their loudest point before analysis.
//
// Example:
//
//	buf := audio.Buffer{
//	    Samples: samples,
//	    Params:  audio.Params{FrameRate: 44100, Channels: 1, SampleWidth: 2},
//	}
//
//	// Keep one minute around the peak
//	buf = audio.TrimAroundPeak(buf, time.Minute)
package audio
