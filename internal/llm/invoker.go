// Package llm is the universal LLM gateway (C5): it renders a prompt
// template, consults the provider chain's circuit breakers, waits on the
// rate limiter, invokes the provider (streaming the answer through the
// sanitizer when enabled), cleans the result, and retries/fails-over on
// transient errors. Every chain in plan and writer goes through here.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/clean"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/ratelimit"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/retry"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/sanitize"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/template"
)

// Named pairs a Provider with the name it's addressed by in the provider
// chain and rate limiter (e.g. "ollama", "groq", "anthropic").
type Named struct {
	Name     string
	Provider Provider
}

// Invoker is the concrete C5 implementation.
type Invoker struct {
	chain     *retry.FallbackChain[Named]
	limiter   *ratelimit.Limiter
	retryCfg  retry.Config
	opts      Options
	onThought func(delta string)
}

// NewInvoker builds an Invoker over an ordered provider chain. onThought,
// if non-nil, receives every reasoning-channel fragment observed while
// streaming (forwarded to interested observers; may be nil).
func NewInvoker(providers []Named, breakerCfg retry.BreakerConfig, retryCfg retry.Config, limiter *ratelimit.Limiter, opts Options, onThought func(delta string)) *Invoker {
	items := make([]struct {
		Name  string
		Value Named
	}, len(providers))
	for i, p := range providers {
		items[i] = struct {
			Name  string
			Value Named
		}{Name: p.Name, Value: p}
	}
	return &Invoker{
		chain:     retry.NewFallbackChain[Named](breakerCfg, items...),
		limiter:   limiter,
		retryCfg:  retryCfg,
		opts:      opts,
		onThought: onThought,
	}
}

// Invoke substitutes vars into template, drives the provider chain, and
// returns the cleaned answer text. Missing template variables produce
// ErrTemplateError; exhausting every provider produces
// ErrAllProvidersExhausted.
func (i *Invoker) Invoke(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	prompt, err := template.Render(tmpl, vars)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplateError, err)
	}

	var answer string
	err = i.chain.Try(func(n Named) error {
		return retry.Do(ctx, i.retryCfg, func(ctx context.Context) error {
			if err := i.limiter.Wait(ctx, n.Name); err != nil {
				return err
			}
			out, callErr := i.callOnce(ctx, n.Provider, prompt)
			if callErr != nil {
				return callErr
			}
			answer = out
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAllProvidersExhausted, err)
	}

	cleaned := clean.Clean(answer, clean.ANSICodes, clean.ThinkTags, clean.Whitespace)
	return cleaned, nil
}

// callOnce performs a single provider attempt, splitting answer/thought
// through the streaming sanitizer when streaming is enabled.
func (i *Invoker) callOnce(ctx context.Context, p Provider, prompt string) (string, error) {
	req := Request{Prompt: prompt, Options: i.opts}

	if !i.opts.Streaming {
		return p.Invoke(ctx, req, nil)
	}

	var answer strings.Builder
	sz := sanitize.New(
		func(d string) { answer.WriteString(d) },
		i.onThought,
	)
	_, err := p.Invoke(ctx, req, func(chunk string) { sz.Write(chunk) })
	sz.Flush()
	if err != nil {
		return "", err
	}
	return answer.String(), nil
}
