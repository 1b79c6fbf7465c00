package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/ratelimit"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/retry"
)

// fakeProvider is an in-test llm.Provider stand-in.
type fakeProvider struct {
	name      string
	chunks    []string
	err       error
	callCount int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Invoke(ctx context.Context, req llm.Request, onChunk func(chunk string)) (string, error) {
	f.callCount++
	if f.err != nil {
		return "", f.err
	}
	var full string
	for _, c := range f.chunks {
		full += c
		if onChunk != nil {
			onChunk(c)
		}
	}
	return full, nil
}

func newInvoker(t *testing.T, providers []llm.Named, retryCfg retry.Config, streaming bool) *llm.Invoker {
	t.Helper()
	limiter := ratelimit.New(ratelimit.Config{Default: 0})
	breakerCfg := retry.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}
	opts := llm.Options{Streaming: streaming}
	return llm.NewInvoker(providers, breakerCfg, retryCfg, limiter, opts, nil)
}

func TestInvoker_RendersTemplateAndCleansAnswer(t *testing.T) {
	p := &fakeProvider{name: "ollama", chunks: []string{"Hola \x1b[31m", "Mundo\x1b[0m  \n\n\n"}}
	inv := newInvoker(t, []llm.Named{{Name: "ollama", Provider: p}}, retry.Config{BaseDelay: time.Millisecond}, false)

	out, err := inv.Invoke(context.Background(), "{{.greeting}}", map[string]any{"greeting": "unused"})
	require.NoError(t, err)
	assert.Equal(t, "Hola Mundo", out)
}

func TestInvoker_StreamingSplitsThinkBlockFromAnswer(t *testing.T) {
	var thoughts string
	p := &fakeProvider{name: "ollama", chunks: []string{"<think>planning", "...</think>Respuesta final"}}
	limiter := ratelimit.New(ratelimit.Config{Default: 0})
	breakerCfg := retry.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}
	inv := llm.NewInvoker(
		[]llm.Named{{Name: "ollama", Provider: p}},
		breakerCfg,
		retry.Config{BaseDelay: time.Millisecond},
		limiter,
		llm.Options{Streaming: true},
		func(d string) { thoughts += d },
	)

	out, err := inv.Invoke(context.Background(), "write a chapter", nil)
	require.NoError(t, err)
	assert.Equal(t, "Respuesta final", out)
	assert.Equal(t, "planning...", thoughts)
}

func TestInvoker_MissingTemplateVarReturnsTemplateError(t *testing.T) {
	p := &fakeProvider{name: "ollama", chunks: []string{"ok"}}
	inv := newInvoker(t, []llm.Named{{Name: "ollama", Provider: p}}, retry.Config{BaseDelay: time.Millisecond}, false)

	_, err := inv.Invoke(context.Background(), "{{.missing}}", map[string]any{})
	assert.ErrorIs(t, err, llm.ErrTemplateError)
}

func TestInvoker_FallsBackToSecondProviderOnFirstFailure(t *testing.T) {
	first := &fakeProvider{name: "ollama", err: errors.New("connection refused")}
	second := &fakeProvider{name: "groq", chunks: []string{"respuesta de respaldo"}}
	inv := newInvoker(t, []llm.Named{
		{Name: "ollama", Provider: first},
		{Name: "groq", Provider: second},
	}, retry.Config{BaseDelay: time.Millisecond}, false)

	out, err := inv.Invoke(context.Background(), "prompt fijo", nil)
	require.NoError(t, err)
	assert.Equal(t, "respuesta de respaldo", out)
	assert.Equal(t, 1, second.callCount)
}

func TestInvoker_AllProvidersExhaustedReturnsWrappedError(t *testing.T) {
	first := &fakeProvider{name: "ollama", err: errors.New("down")}
	second := &fakeProvider{name: "groq", err: errors.New("down too")}
	inv := newInvoker(t, []llm.Named{
		{Name: "ollama", Provider: first},
		{Name: "groq", Provider: second},
	}, retry.Config{MaxRetries: 0, BaseDelay: time.Millisecond}, false)

	_, err := inv.Invoke(context.Background(), "prompt fijo", nil)
	assert.ErrorIs(t, err, llm.ErrAllProvidersExhausted)
}

func TestInvoker_RetriesTransientFailureBeforeSucceeding(t *testing.T) {
	calls := 0
	p := &countingProvider{
		name: "ollama",
		invoke: func() (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("timeout")
			}
			return "ok al segundo intento", nil
		},
	}
	inv := newInvoker(t, []llm.Named{{Name: "ollama", Provider: p}}, retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond}, false)

	out, err := inv.Invoke(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok al segundo intento", out)
	assert.Equal(t, 2, calls)
}

// countingProvider lets a test control exactly what each successive Invoke
// call returns, independent of chunking.
type countingProvider struct {
	name   string
	invoke func() (string, error)
}

func (c *countingProvider) Name() string { return c.name }

func (c *countingProvider) Invoke(ctx context.Context, req llm.Request, onChunk func(chunk string)) (string, error) {
	text, err := c.invoke()
	if err != nil {
		return "", err
	}
	if onChunk != nil {
		onChunk(text)
	}
	return text, nil
}
