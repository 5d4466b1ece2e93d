package mediainfo

import (
	"fmt"
	"time"
)

// FormatDuration renders d as HH:MM:SS when it is at least an hour and MM:SS otherwise.
// Fractions of a second are dropped.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
