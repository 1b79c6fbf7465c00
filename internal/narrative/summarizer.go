package narrative

import (
	"context"
	"strconv"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
)

// LLMSummarizer adapts an llm.Invoker into a narrative.Summarizer, the way
// INTELLIGENT mode condenses sections and finalizes chapters.
type LLMSummarizer struct {
	Invoker *llm.Invoker
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	return s.Invoker.Invoke(ctx, defaultChapterSummaryTemplate, map[string]any{
		"text":      text,
		"max_words": strconv.Itoa(maxWords),
	})
}
