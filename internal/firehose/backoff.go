package firehose

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig defines reconnect backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Delay returns the wait before reconnect attempt n (1-based). With jitter
// the delay is scaled into [0.5, 1.5) of its nominal value.
func (c BackoffConfig) Delay(n int, rng *rand.Rand) time.Duration {
	if c.InitialDelay <= 0 {
		return 0
	}
	if n < 1 {
		n = 1
	}
	mult := math.Max(c.Multiplier, 1.0)
	delay := float64(c.InitialDelay) * math.Pow(mult, float64(n-1))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter && rng != nil {
		delay *= 0.5 + rng.Float64()
	}
	return time.Duration(delay)
}
