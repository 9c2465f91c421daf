// ABOUTME: Version and product identity constants
// ABOUTME: Reported by the CLI and the calibration bridge hello message
package version

const (
	// Version is the release version of the tool
	Version = "0.1.0"

	// Product is the product name advertised to clients
	Product = "egloorator"

	// Manufacturer identifies who built the tool
	Manufacturer = "Egloorator Authors"
)

// String returns the one-line identity printed by the version command
func String() string {
	return Product + " " + Version + " (" + Manufacturer + ")"
}
