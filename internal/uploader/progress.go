package uploader

import (
	"fmt"
	"time"
)

// ChunkPercent is the progress after chunk index of total was acknowledged, rounded half up.
// It is non-decreasing in index and exactly 100 for the last chunk.
func ChunkPercent(index, total int) int {
	if total <= 0 {
		return 0
	}
	done := index + 1
	if done >= total {
		return 100
	}
	return (200*done + total) / (2 * total)
}

// FormatETA estimates the remaining time as elapsed/fraction - elapsed and renders it as "<m>m <s>s".
// It is empty when fraction is not in (0, 1].
func FormatETA(elapsed time.Duration, fraction float64) string {
	if fraction <= 0 || fraction > 1 {
		return ""
	}
	remaining := time.Duration(float64(elapsed)/fraction) - elapsed
	if remaining < 0 {
		remaining = 0
	}
	secs := int64(remaining.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
