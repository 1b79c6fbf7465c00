package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/retry"
)

var errTransient = errors.New("transient provider error")

func TestDo_RetriesExactlyMaxRetriesPlusOneInvocations(t *testing.T) {
	cfg := retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond, Strategy: retry.Fixed}
	calls := 0
	err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, calls) // max_retries + 1
}

func TestDo_SucceedsOnThirdCall(t *testing.T) {
	cfg := retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond, Strategy: retry.Exponential}
	calls := 0
	err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_FatalErrorBypassesRetry(t *testing.T) {
	cfg := retry.Config{MaxRetries: 5, BaseDelay: time.Millisecond}
	calls := 0
	authErr := errors.New("invalid api key")
	err := retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return &retry.FatalError{Cause: authErr}
	})
	assert.ErrorIs(t, err, retry.ErrFatal)
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledStopsRetrying(t *testing.T) {
	cfg := retry.Config{MaxRetries: 10, BaseDelay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls, 11)
}

func TestBackoff_ExponentialGrowsAndCaps(t *testing.T) {
	cfg := retry.Config{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Strategy: retry.Exponential}
	// attempt 1: 100ms, attempt 2: 200ms, attempt 3: would be 400ms, capped at 300ms.
	d1 := cfg.Delay(1)
	d2 := cfg.Delay(2)
	d3 := cfg.Delay(3)
	assert.Equal(t, 100*time.Millisecond, d1)
	assert.Equal(t, 200*time.Millisecond, d2)
	assert.Equal(t, 300*time.Millisecond, d3)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := retry.NewCircuitBreaker(retry.BreakerConfig{Name: "t", FailureThreshold: 2, Cooldown: time.Hour})
	failingCall := func() error { return errTransient }

	assert.Error(t, b.Execute(failingCall))
	assert.Equal(t, retry.Closed, b.State())
	assert.Error(t, b.Execute(failingCall))
	assert.Equal(t, retry.Open, b.State())

	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, retry.ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenProbeRecovers(t *testing.T) {
	b := retry.NewCircuitBreaker(retry.BreakerConfig{
		Name: "t", FailureThreshold: 1, Cooldown: 10 * time.Millisecond, HalfOpenProbes: 1,
	})
	require.Error(t, b.Execute(func() error { return errTransient }))
	require.Equal(t, retry.Open, b.State())

	time.Sleep(15 * time.Millisecond)
	require.Equal(t, retry.HalfOpen, b.State())

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, retry.Closed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := retry.NewCircuitBreaker(retry.BreakerConfig{
		Name: "t", FailureThreshold: 1, Cooldown: 10 * time.Millisecond, HalfOpenProbes: 1,
	})
	require.Error(t, b.Execute(func() error { return errTransient }))
	time.Sleep(15 * time.Millisecond)

	require.Error(t, b.Execute(func() error { return errTransient }))
	assert.Equal(t, retry.Open, b.State())
}

func TestFallbackChain_SkipsOpenBreakerAndSucceedsOnNext(t *testing.T) {
	type entry = struct {
		Name  string
		Value string
	}
	chain := retry.NewFallbackChain[string](
		retry.BreakerConfig{FailureThreshold: 1, Cooldown: time.Hour},
		entry{"ollama", "ollama"},
		entry{"groq", "groq"},
	)

	// First call: ollama fails and trips its breaker, groq succeeds.
	var used string
	err := chain.Try(func(name string) error {
		used = name
		if name == "ollama" {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "groq", used)

	// Second call: ollama's breaker is open, so it's skipped immediately
	// and groq is tried first in practice (still succeeds).
	used = ""
	err = chain.Try(func(name string) error {
		used = name
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "groq", used)
}

func TestFallbackChain_AllProvidersExhausted(t *testing.T) {
	type entry = struct {
		Name  string
		Value string
	}
	chain := retry.NewFallbackChain[string](
		retry.BreakerConfig{FailureThreshold: 5, Cooldown: time.Hour},
		entry{"a", "a"},
		entry{"b", "b"},
	)
	err := chain.Try(func(string) error { return errTransient })
	assert.ErrorIs(t, err, retry.ErrAllProvidersExhausted)
}
