// ABOUTME: Short-time power spectrum of a recording
// ABOUTME: Hann-windowed FFT frames with overlap, levels in dB per frequency bin
package loudness

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultNFFT is the number of samples per spectrogram frame
	DefaultNFFT = 1024

	// DefaultOverlap is the number of samples shared by consecutive frames
	DefaultOverlap = 900
)

var (
	// ErrInvalidFFTSize is returned for an FFT size below 2
	ErrInvalidFFTSize = errors.New("loudness: fft size must be at least 2")
	// ErrInvalidOverlap is returned when the overlap is negative or leaves no hop
	ErrInvalidOverlap = errors.New("loudness: overlap must be in [0, fft size)")
)

// Spectrogram holds the power spectral density of consecutive frames.
// Power[i][k] is the level of frequency bin k in frame i, in dB.
type Spectrogram struct {
	Times     []float64   `json:"times"` // Frame centres in seconds
	Freqs     []float64   `json:"freqs"` // Bin frequencies in Hz
	Power     [][]float64 `json:"power"`
	NFFT      int         `json:"nfft"`
	Overlap   int         `json:"overlap"`
	FrameRate int         `json:"frame_rate"`
}

// BuildSpectrogram computes a one-sided power spectral density over frames of
// nfft samples advancing by nfft-overlap. Input shorter than one frame is
// zero-padded into a single frame; empty input yields no frames.
func BuildSpectrogram(normalized []float64, nfft, overlap, frameRate int) (Spectrogram, error) {
	if nfft < 2 {
		return Spectrogram{}, ErrInvalidFFTSize
	}
	if overlap < 0 || overlap >= nfft {
		return Spectrogram{}, ErrInvalidOverlap
	}
	if frameRate <= 0 {
		return Spectrogram{}, ErrInvalidFrameRate
	}

	fft := fourier.NewFFT(nfft)
	bins := nfft/2 + 1

	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = fft.Freq(k) * float64(frameRate)
	}

	spec := Spectrogram{
		Freqs:     freqs,
		NFFT:      nfft,
		Overlap:   overlap,
		FrameRate: frameRate,
	}

	frames := spectrogramFrames(len(normalized), nfft, overlap)
	if frames == 0 {
		return spec, nil
	}

	taper := make([]float64, nfft)
	for i := range taper {
		taper[i] = 1
	}
	taper = window.Hann(taper)
	scale := 1 / (float64(frameRate) * floats.Dot(taper, taper))

	hop := nfft - overlap
	seq := make([]float64, nfft)
	coeff := make([]complex128, bins)

	spec.Times = make([]float64, frames)
	spec.Power = make([][]float64, frames)

	for i := 0; i < frames; i++ {
		start := i * hop
		n := copy(seq, normalized[start:min(start+nfft, len(normalized))])
		clear(seq[n:])
		floats.Mul(seq, taper)

		coeff = fft.Coefficients(coeff, seq)

		row := make([]float64, bins)
		for k, c := range coeff {
			re, im := real(c), imag(c)
			p := (re*re + im*im) * scale
			// energy from negative frequencies folds onto every bin but DC and Nyquist
			if k != 0 && !(nfft%2 == 0 && k == bins-1) {
				p *= 2
			}
			row[k] = 10 * math.Log10(p+Epsilon)
		}

		spec.Power[i] = row
		spec.Times[i] = (float64(start) + float64(nfft)/2) / float64(frameRate)
	}

	return spec, nil
}

// spectrogramFrames returns how many full frames fit, or one padded frame
// for input shorter than nfft
func spectrogramFrames(total, nfft, overlap int) int {
	if total == 0 {
		return 0
	}
	if total < nfft {
		return 1
	}
	return (total - overlap) / (nfft - overlap)
}

// Len returns the number of frames
func (s Spectrogram) Len() int {
	return len(s.Power)
}

// Range returns the lowest and highest level over every frame and bin.
// An empty spectrogram returns 0, 0.
func (s Spectrogram) Range() (low, high float64) {
	if len(s.Power) == 0 {
		return 0, 0
	}
	low, high = math.Inf(1), math.Inf(-1)
	for _, row := range s.Power {
		low = math.Min(low, floats.Min(row))
		high = math.Max(high, floats.Max(row))
	}
	return low, high
}
