// ABOUTME: Decoder interface definition and file loader
// ABOUTME: Picks a decoder by file extension and loads whole recordings
package decode

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alon/egloorator/pkg/audio"
)

// ErrUnsupportedFormat is returned for file types and encodings no decoder handles
var ErrUnsupportedFormat = errors.New("decode: unsupported format")

// Decoder decodes a complete recording to interleaved 16-bit samples
type Decoder interface {
	// Decode reads r to the end and returns its samples and params
	Decode(r io.ReadSeeker) (audio.Buffer, error)
}

// ForPath returns the decoder matching the file extension of path.
// Raw PCM has no header, so .pcm and .raw files need LoadRaw instead.
func ForPath(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".wav", ".wave":
		return NewWAV(), nil
	case ".flac":
		return NewFLAC(), nil
	case ".mp3":
		return NewMP3(), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: .wav, .flac, .mp3)", ErrUnsupportedFormat, ext)
	}
}

// Load decodes the recording at path
func Load(path string) (audio.Buffer, error) {
	dec, err := ForPath(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	return loadWith(path, dec)
}

// LoadRaw decodes a headerless little-endian 16-bit PCM file
func LoadRaw(path string, params audio.Params) (audio.Buffer, error) {
	dec, err := NewPCM(params)
	if err != nil {
		return audio.Buffer{}, err
	}
	return loadWith(path, dec)
}

func loadWith(path string, dec Decoder) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	buf, err := dec.Decode(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	slog.Debug("Loaded audio",
		"path", path,
		"frame_rate", buf.Params.FrameRate,
		"channels", buf.Params.Channels,
		"samples", len(buf.Samples),
		"duration", buf.Duration())

	return buf, nil
}
