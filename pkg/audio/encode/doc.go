// ABOUTME: Audio encoder package for saving recordings
// ABOUTME: Provides Encoder interface, PCM byte encoding and WAV file output
// Package encode writes sample buffers back out.
//
// Supports: PCM bytes (16-bit and 24-bit) and WAV files.
//
// Example:
//
//	err := encode.SaveWAV("speech.wav", buf.Params, samples)
//	raw := encode.EncodePCM16(samples)
package encode
