// Package format holds small pure formatting helpers shared by the console
// and the dashboard.
package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a duration with a unit suited to its size:
// microseconds below a millisecond, milliseconds below a second, and the
// default representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// FormatRate returns a trials-per-second figure for display.
func FormatRate(trials int, elapsed time.Duration) string {
	if trials <= 0 || elapsed <= 0 {
		return "0.0/s"
	}
	return fmt.Sprintf("%.1f/s", float64(trials)/elapsed.Seconds())
}

// FormatPercent renders a 0..1 fraction as a percentage.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}
