// Package metrics pkg/metrics/format.go
package metrics

import "fmt"

const bytesPerUnit = 1024.0

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes renders a byte count with binary (1024) units and one decimal,
// e.g. 1536 -> "1.5 KiB". Used for storage load and memory fields.
func FormatBytes(n float64) string {
	if n < 0 {
		return fmt.Sprintf("%.1f B", n)
	}

	unit := 0
	for n >= bytesPerUnit && unit < len(byteUnits)-1 {
		n /= bytesPerUnit
		unit++
	}

	return fmt.Sprintf("%.1f %s", n, byteUnits[unit])
}

// FormatBytesOpt renders a present byte count and returns "" for an absent
// one, so display fields stay empty instead of showing a fake zero.
func FormatBytesOpt(f Float) string {
	v, ok := f.Get()
	if !ok {
		return ""
	}

	return FormatBytes(v)
}
