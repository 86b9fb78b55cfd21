// internal/platform/ui/helpers.go
package ui

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
)

// formatDuration formatea una duración de manera legible
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

// boolToString convierte booleano a string visual
func boolToString(b bool) string {
	if b {
		return pterm.Green("ON")
	}
	return pterm.Gray("OFF")
}

// progressText arma "12/50" o solo "12" si no hay total.
func progressText(done, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", done, total)
	}
	return fmt.Sprintf("%d", done)
}

// statusOrder es el orden de presentación de los estados de verificación.
var statusOrder = []string{"valid", "risky", "unverifiable", "invalid"}
