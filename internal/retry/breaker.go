package retry

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by CircuitBreaker.Execute when the breaker is
// open and the cooldown has not yet elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState is the classic three-state circuit breaker mode.
type BreakerState int

const (
	Closed BreakerState = iota
	Open
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a CircuitBreaker.
type BreakerConfig struct {
	// Name labels the guarded provider in log lines.
	Name string
	// FailureThreshold consecutive failures in Closed before tripping to Open.
	FailureThreshold int
	// Cooldown is how long the breaker stays Open before allowing a probe.
	Cooldown time.Duration
	// HalfOpenProbes is how many successful probe calls in HalfOpen are
	// required before returning to Closed; any HalfOpen failure reopens.
	HalfOpenProbes int
}

func (c *BreakerConfig) withDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.HalfOpenProbes <= 0 {
		c.HalfOpenProbes = 1
	}
}

// CircuitBreaker guards a single provider's health. Consulted before every
// invocation, updated after it. Safe for concurrent use.
type CircuitBreaker struct {
	cfg BreakerConfig

	mu              sync.Mutex
	state           BreakerState
	consecutiveFail int
	lastFailure     time.Time
	probesRun       int
	probesOK        int
}

// NewCircuitBreaker creates a breaker in the Closed state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	cfg.withDefaults()
	return &CircuitBreaker{cfg: cfg, state: Closed}
}

// Allow reports whether a call should be attempted right now, transitioning
// Open -> HalfOpen once the cooldown has elapsed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allowLocked()
}

func (b *CircuitBreaker) allowLocked() bool {
	switch b.state {
	case Open:
		if time.Since(b.lastFailure) < b.cfg.Cooldown {
			return false
		}
		b.state = HalfOpen
		b.probesRun = 0
		b.probesOK = 0
		slog.Info("circuit breaker probing", "provider", b.cfg.Name)
		return true
	case HalfOpen:
		return b.probesRun < b.cfg.HalfOpenProbes
	default:
		return true
	}
}

// Execute runs fn if the breaker allows it, recording the outcome.
// Returns ErrCircuitOpen without calling fn when the breaker refuses.
func (b *CircuitBreaker) Execute(fn func() error) error {
	b.mu.Lock()
	if !b.allowLocked() {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	inHalfOpen := b.state == HalfOpen
	if inHalfOpen {
		b.probesRun++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailureLocked(inHalfOpen)
	} else {
		b.recordSuccessLocked(inHalfOpen)
	}
	return err
}

func (b *CircuitBreaker) recordFailureLocked(inHalfOpen bool) {
	b.lastFailure = time.Now()
	if inHalfOpen {
		b.state = Open
		slog.Warn("circuit breaker reopened from half-open", "provider", b.cfg.Name)
		return
	}
	b.consecutiveFail++
	if b.consecutiveFail >= b.cfg.FailureThreshold {
		b.state = Open
		slog.Warn("circuit breaker opened", "provider", b.cfg.Name, "consecutive_failures", b.consecutiveFail)
	}
}

func (b *CircuitBreaker) recordSuccessLocked(inHalfOpen bool) {
	if inHalfOpen {
		b.probesOK++
		if b.probesOK >= b.cfg.HalfOpenProbes {
			b.state = Closed
			b.consecutiveFail = 0
			slog.Info("circuit breaker closed after successful probe", "provider", b.cfg.Name)
		}
		return
	}
	b.consecutiveFail = 0
}

// State returns the breaker's current state, accounting for an elapsed
// cooldown that hasn't yet been observed by a call.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && time.Since(b.lastFailure) >= b.cfg.Cooldown {
		return HalfOpen
	}
	return b.state
}
