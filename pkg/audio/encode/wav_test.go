// ABOUTME: Tests for the WAV writer
// ABOUTME: Checks headers and rejected params
package encode

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alon/egloorator/pkg/audio"
)

func TestSaveWAV_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	params := audio.Params{FrameRate: 22050, Channels: 1, SampleWidth: 2}

	if err := SaveWAV(path, params, []int16{1, -1, 2, -2}); err != nil {
		t.Fatalf("SaveWAV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 22050 {
		t.Errorf("expected sample rate 22050, got %d", rate)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("expected 1 channel, got %d", channels)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("expected 16 bits, got %d", bits)
	}
}

func TestSaveWAV_EmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	params := audio.Params{FrameRate: 44100, Channels: 1, SampleWidth: 2}

	if err := SaveWAV(path, params, []int16{}); err != nil {
		t.Fatalf("SaveWAV failed on empty buffer: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() < 44 {
		t.Errorf("expected at least a 44-byte header, got %d bytes", info.Size())
	}
}

func TestSaveWAV_InvalidParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")

	err := SaveWAV(path, audio.Params{FrameRate: 0, Channels: 1, SampleWidth: 2}, []int16{1})
	if !errors.Is(err, audio.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected no file to be created")
	}
}
