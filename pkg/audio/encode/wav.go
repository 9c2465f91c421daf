// ABOUTME: WAV file writer
// ABOUTME: Saves int16 sample buffers as PCM WAV via go-audio/wav
package encode

import (
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/alon/egloorator/pkg/audio"
)

const wavFormatPCM = 1

// SaveWAV writes samples to path as a PCM WAV file with the frame rate,
// channel count and sample width of params. An empty buffer produces a valid
// WAV file with no frames.
func SaveWAV(path string, params audio.Params, samples []int16) error {
	if err := params.Validate(); err != nil {
		return err
	}

	bitDepth := params.BitDepth()
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	enc := wav.NewEncoder(f, params.FrameRate, bitDepth, params.Channels, wavFormatPCM)

	data := make([]int, len(samples))
	shift := bitDepth - 16
	for i, s := range samples {
		data[i] = int(s) << shift
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: params.Channels,
			SampleRate:  params.FrameRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to close encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close WAV file: %w", err)
	}

	slog.Debug("Saved WAV", "path", path, "samples", len(samples), "frame_rate", params.FrameRate)
	return nil
}
