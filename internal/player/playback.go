// ABOUTME: Chunked playback of 16-bit PCM buffers
// ABOUTME: Reports progress per chunk and stops when its context is cancelled
package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/audio/output"
)

const (
	// DefaultChunkDuration is the amount of audio written per output call
	DefaultChunkDuration = 50 * time.Millisecond

	// drainPoll is how often the device queue is checked after the last write
	drainPoll = 10 * time.Millisecond
)

// ProgressFunc receives the number of samples heard so far
type ProgressFunc func(played int)

// Playback streams buffers to an output device
type Playback struct {
	out   output.Output
	chunk time.Duration

	mu     sync.Mutex
	volume int
	muted  bool
}

// NewPlayback creates a playback driver over out
func NewPlayback(out output.Output) *Playback {
	return &Playback{
		out:    out,
		chunk:  DefaultChunkDuration,
		volume: 100,
	}
}

// SetChunkDuration changes the write granularity
func (p *Playback) SetChunkDuration(d time.Duration) {
	if d > 0 {
		p.chunk = d
	}
}

// SetVolume sets the volume (0-100). It may be called during playback and
// takes effect from the next chunk.
func (p *Playback) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

// SetMuted sets mute state
func (p *Playback) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// Volume returns current volume
func (p *Playback) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// IsMuted returns mute state
func (p *Playback) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *Playback) gain() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume, p.muted
}

// Play writes samples to the output in chunks, then waits for the device to
// play what it still holds. progress may be nil; it receives the number of
// samples heard, which trails the number written by the device queue.
// A cancelled playback returns ctx.Err().
func (p *Playback) Play(ctx context.Context, samples []int16, params audio.Params, progress ProgressFunc) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := p.out.Open(params.FrameRate, params.Channels); err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if err := p.out.Close(); err != nil {
			slog.Warn("failed to close output", "error", err)
		}
	}()

	step := chunkSamples(p.chunk, params)
	slog.Debug("Playback started", "samples", len(samples), "chunk_samples", step)

	heard := 0
	report := func(written int) {
		n := max(written-p.out.Buffered(), 0)
		if n > heard {
			heard = n
			if progress != nil {
				progress(n)
			}
		}
	}

	written := 0
	for written < len(samples) {
		if err := ctx.Err(); err != nil {
			slog.Debug("Playback cancelled", "written", written, "heard", heard)
			return err
		}

		volume, muted := p.gain()
		end := min(written+step, len(samples))
		if err := p.out.Write(applyVolume(samples[written:end], volume, muted)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		written = end
		report(written)
	}

	if err := p.out.Finish(); err != nil {
		return fmt.Errorf("finish output: %w", err)
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for p.out.Buffered() > 0 {
		select {
		case <-ctx.Done():
			slog.Debug("Playback cancelled while draining", "heard", heard)
			return ctx.Err()
		case <-ticker.C:
			report(written)
		}
	}
	report(written)

	slog.Debug("Playback finished", "played", written)
	return nil
}

// chunkSamples converts a chunk duration into a whole number of frames
func chunkSamples(d time.Duration, params audio.Params) int {
	frames := int(d.Seconds() * float64(params.FrameRate))
	if frames < 1 {
		frames = 1
	}
	return frames * params.Channels
}

// applyVolume applies volume and mute to samples
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		return samples
	}

	result := make([]int16, len(samples))
	for i, sample := range samples {
		result[i] = int16(float64(sample) * multiplier)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
