// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM to the default device using oto library
package output

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ebitengine/oto/v3"

	"github.com/alon/egloorator/pkg/audio/encode"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	// oto allows one context per process, so a second Open reuses it
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			slog.Warn("oto does not support reinitialization, keeping existing format",
				"sample_rate", o.sampleRate, "channels", o.channels,
				"requested_sample_rate", sampleRate, "requested_channels", channels)
		}
		if !o.ready {
			o.startPlayer()
			if err := o.otoCtx.Resume(); err != nil {
				return fmt.Errorf("failed to resume oto context: %w", err)
			}
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.startPlayer()

	slog.Info("Audio output initialized", "sample_rate", sampleRate, "channels", channels)

	return nil
}

// startPlayer creates a persistent player that reads from a pipe
func (o *Oto) startPlayer() {
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int16) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}
	if o.pipeWriter == nil {
		return fmt.Errorf("output already finished")
	}

	if _, err := o.pipeWriter.Write(encode.EncodePCM16(samples)); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// Finish closes the pipe so the player reaches EOF after its buffer empties
func (o *Oto) Finish() error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}
	if o.pipeWriter != nil {
		if err := o.pipeWriter.Close(); err != nil {
			return fmt.Errorf("failed to close pipe: %w", err)
		}
		o.pipeWriter = nil
	}
	return nil
}

// Buffered returns the samples held by the player. The player stops on its
// own once it has played everything after Finish.
func (o *Oto) Buffered() int {
	if o.player == nil || !o.player.IsPlaying() {
		return 0
	}
	return o.player.BufferedSize() / 2
}

// Close stops playback. The oto context stays suspended so a later Open can
// resume it.
func (o *Oto) Close() error {
	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil && o.ready {
		o.ready = false
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}
