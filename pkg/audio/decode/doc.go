// ABOUTME: Audio decoder package for loading recordings
// ABOUTME: Provides Decoder interface and implementations for WAV, FLAC, MP3 and raw PCM
// Package decode loads complete recordings into memory.
//
// Supports: WAV (16, 24 and 32-bit integer PCM), FLAC, MP3, headerless 16-bit PCM
//
// All decoders output interleaved int16 samples; wider sources are rescaled
// so the returned Params always report a 2-byte sample width.
//
// Example:
//
//	buf, err := decode.Load("take1.wav")
//	raw, err := decode.LoadRaw("take1.pcm", audio.Params{FrameRate: 16000, Channels: 1, SampleWidth: 2})
package decode
