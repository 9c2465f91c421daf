// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface and oto implementation
// Package output provides audio playback interfaces.
//
// Currently supports oto for cross-platform audio output.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(44100, 1)
//	err = out.Write(samples)
package output
