package widget

import (
	"math"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count with base-1024 units and at most two
// decimals, e.g. 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	i = min(i, len(sizeUnits)-1)

	value := float64(bytes) / math.Pow(1024, float64(i))
	// Log rounding can push exact powers of 1024 one unit too low.
	if value >= 1024 && i < len(sizeUnits)-1 {
		i++
		value /= 1024
	}

	// The unit is fixed before rounding, so 1048575 renders as "1024 KB".
	value = math.Round(value*100) / 100
	return humanize.FtoaWithDigits(value, 2) + " " + sizeUnits[i]
}
