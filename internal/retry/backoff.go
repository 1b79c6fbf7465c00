package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how delay(attempt) grows between retries.
type BackoffStrategy int

const (
	Exponential BackoffStrategy = iota
	Linear
	Fixed
)

// Config controls retry attempts and backoff timing for Do.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Strategy   BackoffStrategy
	Jitter     bool
}

// Delay returns the backoff duration before retry attempt n (1-indexed: the
// wait before the 1st retry, after the 1st failure).
func (c Config) Delay(attempt int) time.Duration {
	var d time.Duration
	switch c.Strategy {
	case Linear:
		d = c.BaseDelay * time.Duration(attempt)
	case Fixed:
		d = c.BaseDelay
	default: // Exponential
		d = time.Duration(float64(c.BaseDelay) * math.Pow(2, float64(attempt-1)))
	}

	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.Jitter && d > 0 {
		d = time.Duration(rand.Int64N(int64(d)/2+1)) + d/2
	}
	return d
}
