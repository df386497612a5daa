package widgets

import "fmt"

// formatSpeed renders a playback rate in plan minutes per second.
func formatSpeed(speed float64) string {
	if speed < 1 {
		return fmt.Sprintf("%.2f min/s", speed)
	}
	return fmt.Sprintf("%.0f min/s", speed)
}
