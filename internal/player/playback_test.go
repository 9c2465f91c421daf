// ABOUTME: Tests for chunked playback
// ABOUTME: Uses a recording output to check chunking, progress and cancellation
package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alon/egloorator/pkg/audio"
)

type recordingOutput struct {
	opened     bool
	closed     bool
	finished   bool
	sampleRate int
	channels   int
	writes     [][]int16
	failAfter  int
	onWrite    func()
}

func (r *recordingOutput) Open(sampleRate, channels int) error {
	r.opened = true
	r.sampleRate = sampleRate
	r.channels = channels
	return nil
}

func (r *recordingOutput) Write(samples []int16) error {
	if r.failAfter > 0 && len(r.writes) >= r.failAfter {
		return errors.New("device gone")
	}
	r.writes = append(r.writes, append([]int16(nil), samples...))
	if r.onWrite != nil {
		r.onWrite()
	}
	return nil
}

func (r *recordingOutput) Finish() error {
	r.finished = true
	return nil
}

func (r *recordingOutput) Buffered() int {
	return 0
}

func (r *recordingOutput) Close() error {
	r.closed = true
	return nil
}

// lagOutput holds up to lag samples like a device buffer and plays 10 of
// them per Buffered call once the stream is finished
type lagOutput struct {
	recordingOutput
	lag          int
	queued       int
	queueAtClose int
	onFinish     func()
}

func (l *lagOutput) Write(samples []int16) error {
	if err := l.recordingOutput.Write(samples); err != nil {
		return err
	}
	l.queued = min(l.queued+len(samples), l.lag)
	return nil
}

func (l *lagOutput) Finish() error {
	l.finished = true
	if l.onFinish != nil {
		l.onFinish()
	}
	return nil
}

func (l *lagOutput) Buffered() int {
	q := l.queued
	if l.finished && l.queued > 0 {
		l.queued = max(l.queued-10, 0)
	}
	return q
}

func (l *lagOutput) Close() error {
	l.queueAtClose = l.queued
	return l.recordingOutput.Close()
}

func TestPlayChunksAndProgress(t *testing.T) {
	out := &recordingOutput{}
	pb := NewPlayback(out)

	// 50ms at 1000Hz mono is 50 samples per chunk
	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	samples := make([]int16, 120)
	for i := range samples {
		samples[i] = int16(i)
	}

	var progress []int
	if err := pb.Play(context.Background(), samples, params, func(played int) {
		progress = append(progress, played)
	}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if !out.opened || !out.closed || !out.finished {
		t.Error("expected output to be opened, finished and closed")
	}
	if out.sampleRate != 1000 || out.channels != 1 {
		t.Errorf("expected 1000Hz mono, got %dHz %d channels", out.sampleRate, out.channels)
	}
	if len(out.writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(out.writes))
	}
	if len(out.writes[2]) != 20 {
		t.Errorf("expected short final chunk of 20, got %d", len(out.writes[2]))
	}
	want := []int{50, 100, 120}
	for i, p := range want {
		if progress[i] != p {
			t.Errorf("progress[%d]: expected %d, got %d", i, p, progress[i])
		}
	}
	if out.writes[1][0] != 50 {
		t.Errorf("expected second chunk to start at sample 50, got %d", out.writes[1][0])
	}
}

func TestPlayWaitsForQueuedAudio(t *testing.T) {
	out := &lagOutput{lag: 30}
	pb := NewPlayback(out)

	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}

	var progress []int
	if err := pb.Play(context.Background(), make([]int16, 120), params, func(played int) {
		progress = append(progress, played)
	}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	want := []int{20, 70, 90, 100, 120}
	if len(progress) != len(want) {
		t.Fatalf("expected progress %v, got %v", want, progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d]: expected %d, got %d", i, want[i], progress[i])
		}
	}
	if !out.closed {
		t.Fatal("expected output to be closed")
	}
	if out.queueAtClose != 0 {
		t.Errorf("output closed with %d samples still queued", out.queueAtClose)
	}
}

func TestPlayCancelWhileDraining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := &lagOutput{lag: 1000, onFinish: cancel}
	pb := NewPlayback(out)

	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	err := pb.Play(ctx, make([]int16, 100), params, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !out.closed {
		t.Error("expected output to be closed after cancel")
	}
}

func TestSetVolumeDuringPlayback(t *testing.T) {
	out := &recordingOutput{}
	pb := NewPlayback(out)
	out.onWrite = func() { pb.SetVolume(50) }

	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 1000
	}
	if err := pb.Play(context.Background(), samples, params, nil); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if out.writes[0][0] != 1000 {
		t.Errorf("first chunk: expected full volume 1000, got %d", out.writes[0][0])
	}
	if out.writes[1][0] != 500 {
		t.Errorf("second chunk: expected half volume 500, got %d", out.writes[1][0])
	}
}

func TestPlayStereoChunkIsFrameAligned(t *testing.T) {
	out := &recordingOutput{}
	pb := NewPlayback(out)
	pb.SetChunkDuration(10 * time.Millisecond)

	params := audio.Params{FrameRate: 1000, Channels: 2, SampleWidth: 2}
	if err := pb.Play(context.Background(), make([]int16, 40), params, nil); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	for i, w := range out.writes {
		if len(w)%2 != 0 {
			t.Errorf("write %d has odd length %d", i, len(w))
		}
	}
	if len(out.writes) != 2 {
		t.Errorf("expected 2 writes, got %d", len(out.writes))
	}
}

func TestPlayCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := &recordingOutput{}
	out.onWrite = cancel
	pb := NewPlayback(out)

	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	err := pb.Play(ctx, make([]int16, 500), params, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(out.writes) != 1 {
		t.Errorf("expected playback to stop after 1 write, got %d", len(out.writes))
	}
	if !out.closed {
		t.Error("expected output to be closed after cancel")
	}
}

func TestPlayWriteError(t *testing.T) {
	out := &recordingOutput{failAfter: 1}
	pb := NewPlayback(out)

	params := audio.Params{FrameRate: 1000, Channels: 1, SampleWidth: 2}
	if err := pb.Play(context.Background(), make([]int16, 500), params, nil); err == nil {
		t.Fatal("expected write error")
	}
}

func TestPlayInvalidParams(t *testing.T) {
	out := &recordingOutput{}
	pb := NewPlayback(out)

	err := pb.Play(context.Background(), make([]int16, 10), audio.Params{}, nil)
	if !errors.Is(err, audio.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if out.opened {
		t.Error("output should not be opened with invalid params")
	}
}

func TestVolumeMultiplier(t *testing.T) {
	tests := []struct {
		volume   int
		muted    bool
		expected float64
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{80, true, 0.0}, // Muted overrides volume
	}

	for _, tt := range tests {
		result := getVolumeMultiplier(tt.volume, tt.muted)
		if result != tt.expected {
			t.Errorf("volume=%d, muted=%v: expected %f, got %f",
				tt.volume, tt.muted, tt.expected, result)
		}
	}
}

func TestApplyVolume(t *testing.T) {
	samples := []int16{1000, -1000, 500, -500}

	result := applyVolume(samples, 50, false)

	if result[0] != 500 {
		t.Errorf("expected 500, got %d", result[0])
	}
	if result[1] != -500 {
		t.Errorf("expected -500, got %d", result[1])
	}
	if samples[0] != 1000 {
		t.Error("applyVolume must not modify its input")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	pb := NewPlayback(&recordingOutput{})

	pb.SetVolume(150)
	if pb.Volume() != 100 {
		t.Errorf("expected 100, got %d", pb.Volume())
	}
	pb.SetVolume(-5)
	if pb.Volume() != 0 {
		t.Errorf("expected 0, got %d", pb.Volume())
	}
	pb.SetMuted(true)
	if !pb.IsMuted() {
		t.Error("expected muted")
	}
}
