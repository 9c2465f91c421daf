// ABOUTME: Threshold segmenter
// ABOUTME: Selects the sample range of every window louder than the threshold
package calibrate

import (
	"sort"
	"time"

	"github.com/alon/egloorator/pkg/loudness"
)

// Segment is a half-open sample range [Start, End)
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns End - Start
func (s Segment) Len() int {
	return s.End - s.Start
}

// SegmentSet is an ascending, disjoint list of segments, one per selected window
type SegmentSet []Segment

// SegmentsAbove returns the sample range of every window whose level is
// strictly greater than threshold. Adjacent windows are not merged.
func SegmentsAbove(curve loudness.Curve, threshold float64, windowSize, totalSamples int) SegmentSet {
	segments := SegmentSet{}
	for i, p := range curve.Points {
		if p.Level <= threshold {
			continue
		}
		start := i * windowSize
		end := min(start+windowSize, totalSamples)
		if start >= end {
			continue
		}
		segments = append(segments, Segment{Start: start, End: end})
	}
	return segments
}

// TotalSamples returns the sum of all segment lengths
func (s SegmentSet) TotalSamples() int {
	total := 0
	for _, seg := range s {
		total += seg.Len()
	}
	return total
}

// Offsets returns the output position at which each segment begins once the
// set is concatenated. The extra final entry equals TotalSamples.
func (s SegmentSet) Offsets() []int {
	offsets := make([]int, len(s)+1)
	for i, seg := range s {
		offsets[i+1] = offsets[i] + seg.Len()
	}
	return offsets
}

// SourcePosition maps a position in the extracted output back to the sample
// index in the original recording. It returns false once played reaches the
// end of the output.
func (s SegmentSet) SourcePosition(played int) (int, bool) {
	if played < 0 || len(s) == 0 {
		return 0, false
	}

	offsets := s.Offsets()
	if played >= offsets[len(s)] {
		return 0, false
	}

	// First segment whose end offset is beyond played
	i := sort.Search(len(s), func(i int) bool {
		return offsets[i+1] > played
	})
	return s[i].Start + (played - offsets[i]), true
}

// Duration returns the playback length of the concatenated segments for a
// stream of sampleRate samples per second.
func (s SegmentSet) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(s.TotalSamples()) * time.Second / time.Duration(sampleRate)
}
