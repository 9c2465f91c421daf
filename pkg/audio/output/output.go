// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int16) error

	// Finish marks the end of the stream so queued audio can play out
	Finish() error

	// Buffered returns the number of written samples not yet played
	Buffered() int

	// Close releases output resources, discarding anything still queued
	Close() error
}
