package ports

import (
	"math/rand/v2"
	"time"
)

// Clock is the only source of "now" for deadlines and timers.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// RandomSource draws destination picks and search durations. *rand.Rand from
// math/rand/v2 satisfies it; it is not safe for concurrent use, SystemRandom is.
type RandomSource interface {
	IntN(n int) int
}

type SystemRandom struct{}

func (SystemRandom) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // game randomness
}
