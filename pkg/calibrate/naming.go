// ABOUTME: File naming for saved extractions
// ABOUTME: Builds overwritten_<name>_<threshold>.wav from the source path
package calibrate

import (
	"path/filepath"
	"strconv"
	"strings"
)

// OutputName returns the file name used when saving the above-threshold audio
// of source. The threshold is written in its shortest exact form, switching to
// exponent notation for very large or very small magnitudes so the name stays
// within file system limits.
func OutputName(source string, threshold float64) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return "overwritten_" + base + "_" + strconv.FormatFloat(threshold, 'g', -1, 64) + ".wav"
}
