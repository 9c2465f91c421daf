// ABOUTME: Headerless PCM file writer
// ABOUTME: Saves int16 sample buffers as raw 16-bit or 24-bit little-endian PCM
package encode

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alon/egloorator/pkg/audio"
)

// SaveRaw writes samples to path as headerless PCM at the sample width of
// params. The file carries no rate or channel information.
func SaveRaw(path string, params audio.Params, samples []int16) error {
	if err := params.Validate(); err != nil {
		return err
	}

	enc, err := NewPCM(params)
	if err != nil {
		return err
	}
	defer enc.Close()

	data, err := enc.Encode(samples)
	if err != nil {
		return fmt.Errorf("failed to encode PCM: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PCM file: %w", err)
	}

	slog.Debug("Saved raw PCM", "path", path, "samples", len(samples), "sample_width", params.SampleWidth)
	return nil
}
