// Package thumbnail captures candidate still frames from a video and keeps them until one is chosen
package thumbnail

import (
	"math/rand"
	"time"
)

// MaxOffset is the largest shift, as a fraction of the spacing, applied to capture timestamps
const MaxOffset = 0.9

// Timestamps returns count evenly spaced capture times across duration, each shifted by
// offset (clamped to [0, MaxOffset]) of the spacing. The result is strictly increasing and
// every value is below duration. It is nil when duration or count is not positive.
func Timestamps(duration time.Duration, count int, offset float64) []time.Duration {
	if duration <= 0 || count <= 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset > MaxOffset {
		offset = MaxOffset
	}

	step := float64(duration) / float64(count)
	out := make([]time.Duration, count)
	for i := range out {
		out[i] = time.Duration(step * (float64(i) + offset))
	}
	return out
}

// RandomOffset returns one of 0, 0.1, ..., 0.9
func RandomOffset() float64 {
	return float64(rand.Intn(10)) / 10
}
