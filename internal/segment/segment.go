// Package segment selects a representative slice of long chapter text when
// it must be condensed into a size budget before it can be summarized or
// handed to an LLM as context (C7). Extraction is pure and deterministic:
// the same text, strategy, and config always produce the same output.
package segment

import (
	"strings"
)

// Strategy selects which part(s) of the text are kept.
type Strategy int

const (
	// Adaptive takes first+middle+last, each span a third of the budget left
	// after the two elision markers, clamped to Config's Min/Max bounds. The
	// span length depends on the budget, not on the text's total length.
	// Default strategy.
	Adaptive Strategy = iota
	// StartEnd takes the first K and last K characters, joined by Elision.
	StartEnd
	// Uniform takes N equally-spaced segments of equal length.
	Uniform
	// Full passes the text through unchanged, when it already fits.
	Full
)

const defaultElision = "\n[...]\n"

// Config tunes an Extract call.
type Config struct {
	Strategy Strategy

	// K is the span length used by StartEnd (per side).
	K int
	// N is the segment count used by Uniform.
	N int
	// MinSpan and MaxSpan bound each span's length under Adaptive.
	MinSpan, MaxSpan int

	// Elision is the marker inserted between kept spans. Defaults to
	// "\n[...]\n" when empty.
	Elision string

	// RespectBoundaries snaps span ends to the nearest paragraph break,
	// falling back to sentence end, never producing a span shorter than
	// MinSpan.
	RespectBoundaries bool
}

func (c Config) elision() string {
	if c.Elision != "" {
		return c.Elision
	}
	return defaultElision
}

// Extract returns a representative slice of text no longer than budget
// characters (plus elision markers), per cfg.Strategy.
func Extract(text string, budget int, cfg Config) string {
	if budget <= 0 || len(text) == 0 {
		return ""
	}
	if len(text) <= budget || cfg.Strategy == Full {
		return text
	}

	switch cfg.Strategy {
	case StartEnd:
		return extractStartEnd(text, budget, cfg)
	case Uniform:
		return extractUniform(text, budget, cfg)
	default:
		return extractAdaptive(text, budget, cfg)
	}
}

func extractStartEnd(text string, budget int, cfg Config) string {
	k := cfg.K
	if k <= 0 {
		k = budget / 2
	}
	elision := cfg.elision()
	avail := budget - len(elision)
	if avail <= 0 {
		return snapEnd(text, budget, cfg)
	}
	half := avail / 2
	if k > half {
		k = half
	}

	head := snapEnd(text, k, cfg)
	tail := snapStart(text, k, cfg)
	return head + elision + tail
}

func extractUniform(text string, budget int, cfg Config) string {
	n := cfg.N
	if n <= 0 {
		n = 3
	}
	elision := cfg.elision()
	totalElision := len(elision) * (n - 1)
	avail := budget - totalElision
	if avail <= 0 || n <= 1 {
		return snapEnd(text, budget, cfg)
	}
	spanLen := avail / n
	if spanLen <= 0 {
		return snapEnd(text, budget, cfg)
	}

	stride := len(text) / n
	segments := make([]string, 0, n)
	for i := 0; i < n; i++ {
		start := i * stride
		if start >= len(text) {
			break
		}
		segments = append(segments, snapEnd(text[start:], spanLen, cfg))
	}
	return strings.Join(segments, elision)
}

func extractAdaptive(text string, budget int, cfg Config) string {
	minSpan, maxSpan := cfg.MinSpan, cfg.MaxSpan
	if minSpan <= 0 {
		minSpan = 100
	}
	if maxSpan <= 0 {
		maxSpan = budget
	}

	elision := cfg.elision()
	avail := budget - 2*len(elision)
	if avail <= 0 {
		return snapEnd(text, budget, cfg)
	}

	span := avail / 3
	if span > maxSpan {
		span = maxSpan
	}
	if span < minSpan {
		span = minSpan
	}
	if span*3 > avail {
		span = avail / 3
	}
	if span <= 0 {
		return snapEnd(text, budget, cfg)
	}

	first := snapEnd(text, span, cfg)

	mid := len(text) / 2
	midStart := max(0, mid-span/2)
	middle := snapEnd(text[midStart:], span, cfg)

	last := snapStart(text, span, cfg)

	return first + elision + middle + elision + last
}

// snapEnd trims s to at most limit characters, moving the cut point
// earlier to the nearest paragraph break (else sentence end) when
// cfg.RespectBoundaries is set, but never below cfg.MinSpan (or half of
// limit if MinSpan is unset).
func snapEnd(s string, limit int, cfg Config) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	if !cfg.RespectBoundaries {
		return s[:cut]
	}
	floor := cfg.MinSpan
	if floor <= 0 {
		floor = limit / 2
	}
	if idx := lastParagraphBreak(s[:cut]); idx >= floor {
		return s[:idx]
	}
	if idx := lastSentenceEnd(s[:cut]); idx >= floor {
		return s[:idx]
	}
	return s[:cut]
}

// snapStart trims s to at most limit characters from its tail, moving the
// cut point later to the nearest paragraph break (else sentence start)
// when cfg.RespectBoundaries is set.
func snapStart(s string, limit int, cfg Config) string {
	if len(s) <= limit {
		return s
	}
	start := len(s) - limit
	if !cfg.RespectBoundaries {
		return s[start:]
	}
	floor := cfg.MinSpan
	if floor <= 0 {
		floor = limit / 2
	}
	if idx := firstParagraphBreak(s[start:]); idx >= 0 && limit-idx >= floor {
		return s[start+idx:]
	}
	if idx := firstSentenceStart(s[start:]); idx >= 0 && limit-idx >= floor {
		return s[start+idx:]
	}
	return s[start:]
}

func lastParagraphBreak(s string) int {
	if idx := strings.LastIndex(s, "\n\n"); idx >= 0 {
		return idx + 2
	}
	return -1
}

func lastSentenceEnd(s string) int {
	best := -1
	for _, mark := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.LastIndex(s, mark); idx >= 0 && idx+1 > best {
			best = idx + 1
		}
	}
	return best
}

func firstParagraphBreak(s string) int {
	if idx := strings.Index(s, "\n\n"); idx >= 0 {
		return idx + 2
	}
	return -1
}

func firstSentenceStart(s string) int {
	for _, mark := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.Index(s, mark); idx >= 0 {
			return idx + len(mark)
		}
	}
	return -1
}

