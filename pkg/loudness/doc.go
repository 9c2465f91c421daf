// ABOUTME: Loudness envelope package for speech/silence calibration
// ABOUTME: Converts PCM samples into a windowed decibel curve
// Package loudness turns a recording into a frame-wise power envelope.
//
// Samples are normalized to [-1, 1], split into fixed-length
// non-overlapping windows, and each window's mean-square power is expressed
// in decibels. The final window may be shorter than the rest and is
// averaged over the samples it actually holds.
//
// BuildSpectrogram adds a frequency view of the same recording: Hann-windowed
// FFT frames (1024 samples, 900 overlap by default) as power spectral
// density in dB.
//
// Example:
//
//	windowSize := loudness.DefaultWindowSize(44100)
//	curve, err := loudness.BuildEnvelope(loudness.Normalize(samples), windowSize, 44100)
//	low, high := curve.Range()
package loudness
