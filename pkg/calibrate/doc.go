// ABOUTME: Threshold calibration package for the speech/silence detector
// ABOUTME: Provides segmentation, extraction and the calibration Session
// Package calibrate selects the speech portions of a recording.
//
// A Session computes the loudness curve of a recording once and then lets a
// caller move a decibel threshold freely. Windows whose level is strictly
// above the threshold are selected as segments, and the selected samples can
// be extracted into a new buffer.
//
// Example:
//
//	session, err := calibrate.NewSession(buf.Samples, buf.Params)
//	if errors.Is(err, calibrate.ErrEmptyInput) {
//	    // cannot calibrate this recording
//	}
//
//	session.SetThreshold(-35)
//	samples, segments := session.ExtractAboveThreshold()
package calibrate
