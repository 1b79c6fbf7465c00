package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/ratelimit"
)

func TestLimiter_FirstCallNeverWaits(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Default: 100 * time.Millisecond})
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "ollama"))
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestLimiter_SpacesConsecutiveCalls(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Default: 40 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "groq"))
	t1 := time.Now()
	require.NoError(t, l.Wait(ctx, "groq"))
	t2 := time.Now()

	assert.GreaterOrEqual(t, t2.Sub(t1), 40*time.Millisecond)
}

func TestLimiter_PerProviderOverridesDefault(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{
		Default:     time.Second,
		PerProvider: map[string]time.Duration{"fast": 10 * time.Millisecond},
	})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "fast"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "fast"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_IndependentPerProvider(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Default: time.Second})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "a"))
	start := time.Now()
	require.NoError(t, l.Wait(ctx, "b"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_ConcurrentCallsStillRespectSpacing(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Default: 20 * time.Millisecond})
	ctx := context.Background()

	const n = 5
	times := make([]time.Time, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			require.NoError(t, l.Wait(ctx, "shared"))
			times[i] = time.Now()
		}()
	}
	wg.Wait()

	// Sort isn't needed for n=5 in a unit test; just assert the total span
	// covers at least (n-1) spacing intervals.
	var earliest, latest time.Time
	for i, tm := range times {
		if i == 0 || tm.Before(earliest) {
			earliest = tm
		}
		if i == 0 || tm.After(latest) {
			latest = tm
		}
	}
	assert.GreaterOrEqual(t, latest.Sub(earliest), time.Duration(n-1)*20*time.Millisecond)
}

func TestLimiter_ContextCancellation(t *testing.T) {
	l := ratelimit.New(ratelimit.Config{Default: time.Second})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "slow"))

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(cancelCtx, "slow")
	assert.ErrorIs(t, err, context.Canceled)
}
