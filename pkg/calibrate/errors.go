// ABOUTME: Error values for the calibration session
// ABOUTME: Checkable with errors.Is by front ends
package calibrate

import "errors"

var (
	// ErrEmptyInput is returned when a Session is created from zero samples,
	// since the threshold range is undefined.
	ErrEmptyInput = errors.New("calibrate: empty sample buffer")

	// ErrNotImplemented is returned by ComputeOptimalThreshold. Callers should
	// treat it as "feature unavailable" and fall back to ResetThreshold.
	ErrNotImplemented = errors.New("calibrate: optimal threshold heuristic not implemented")
)
