package metrics

import (
	"math"
	"time"
)

// BackoffPolicy decides the delay before the next cycle from the base interval
// and the number of consecutive failed cycles.
type BackoffPolicy interface {
	Next(interval time.Duration, consecutiveFailures int) time.Duration
}

// FixedInterval retries at the base interval forever.
type FixedInterval struct{}

func (FixedInterval) Next(interval time.Duration, _ int) time.Duration {
	return interval
}

// ExponentialBackoff doubles the delay after every consecutive failure, capped
// at Max. A successful cycle returns the delay to the base interval. Without a
// Max the delay stops growing before it would overflow.
type ExponentialBackoff struct {
	Max time.Duration
}

func (b ExponentialBackoff) Next(interval time.Duration, consecutiveFailures int) time.Duration {
	delay := interval
	for i := 0; i < consecutiveFailures; i++ {
		if delay > math.MaxInt64/2 {
			return delay
		}
		delay *= 2
		if b.Max > 0 && delay >= b.Max {
			return b.Max
		}
	}
	return delay
}
