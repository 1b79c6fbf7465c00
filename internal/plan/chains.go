package plan

import (
	"context"
	"strings"
)

// Invoker is the subset of llm.Invoker's surface plan depends on.
type Invoker interface {
	Invoke(ctx context.Context, tmpl string, vars map[string]any) (string, error)
}

// Chains is the concrete C9 implementation: four templated calls through
// an Invoker, each with a deterministic parser and a one-shot stricter
// retry on parse failure.
type Chains struct {
	invoker Invoker
}

func NewChains(invoker Invoker) *Chains {
	return &Chains{invoker: invoker}
}

// invokeWithRetry runs tmpl, and if parse(result) fails, retries once with
// strictTmpl before giving up with ErrMalformedResponse (wrapped with the
// second attempt's parse error).
func invokeWithRetry[T any](ctx context.Context, inv Invoker, tmpl, strictTmpl string, vars map[string]any, parse func(string) (T, error)) (T, error) {
	var zero T

	raw, err := inv.Invoke(ctx, tmpl, vars)
	if err != nil {
		return zero, err
	}
	if parsed, perr := parse(raw); perr == nil {
		return parsed, nil
	}

	raw, err = inv.Invoke(ctx, strictTmpl, vars)
	if err != nil {
		return zero, err
	}
	parsed, perr := parse(raw)
	if perr != nil {
		return zero, perr
	}
	return parsed, nil
}

// Title generates a single-line novel title.
func (c *Chains) Title(ctx context.Context, subject, genre, profile, style string) (string, error) {
	vars := map[string]any{"subject": subject, "genre": genre, "profile": profile, "style": style}
	return invokeWithRetry(ctx, c.invoker, titleTemplate, titleTemplateStrict, vars, parseTitleLine)
}

// Framework generates the multi-paragraph narrative framework.
func (c *Chains) Framework(ctx context.Context, title, subject, genre, profile, style string) (string, error) {
	vars := map[string]any{"title": title, "subject": subject, "genre": genre, "profile": profile, "style": style}
	return invokeWithRetry(ctx, c.invoker, frameworkTemplate, frameworkTemplateStrict, vars, parseFramework)
}

// ChaptersResult is the Chapters chain's output: chapter keys in response
// order plus their descriptions.
type ChaptersResult struct {
	Keys         []string
	Descriptions map[string]string
}

// Chapters generates the ordered chapter list.
func (c *Chains) Chapters(ctx context.Context, framework, subject, genre string) (ChaptersResult, error) {
	vars := map[string]any{"framework": framework, "subject": subject, "genre": genre}
	parse := func(raw string) (ChaptersResult, error) {
		keys, descs, err := parseChapterLines(raw)
		if err != nil {
			return ChaptersResult{}, err
		}
		return ChaptersResult{Keys: keys, Descriptions: descs}, nil
	}
	return invokeWithRetry(ctx, c.invoker, chaptersTemplate, chaptersTemplateStrict, vars, parse)
}

// Ideas generates the 3-5 scene ideas for a single chapter.
func (c *Chains) Ideas(ctx context.Context, framework, chapterKey, chapterDescription string, priorIdeas []string) ([]string, error) {
	vars := map[string]any{
		"framework":           framework,
		"chapter_key":         chapterKey,
		"chapter_description": chapterDescription,
		"prior_ideas":         strings.Join(priorIdeas, "; "),
	}
	return invokeWithRetry(ctx, c.invoker, ideasTemplate, ideasTemplateStrict, vars, parseIdeaLines)
}
