// ABOUTME: Segment extractor
// ABOUTME: Concatenates selected sample ranges into a new buffer
package calibrate

// Extract concatenates samples[start:end] for every segment in order.
// An empty SegmentSet yields an empty, non-nil buffer.
func Extract(samples []int16, segments SegmentSet) []int16 {
	out := make([]int16, 0, segments.TotalSamples())
	for _, seg := range segments {
		out = append(out, samples[seg.Start:seg.End]...)
	}
	return out
}
