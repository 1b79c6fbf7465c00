package llm

import "context"

// Provider is the uniform interface every backend (Ollama, an
// OpenAI-compatible endpoint covering OpenAI/Groq/DeepSeek, Anthropic)
// implements. Identified externally by a "provider:model" string, e.g.
// "ollama:llama3" or "groq:llama3-8b-8192".
//
// onChunk is called with each streamed fragment of text as it arrives when
// req.Options.Streaming is true; implementations that don't support
// streaming may simply call onChunk once with the full text. Invoke returns
// the full, uncleaned response text.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, req Request, onChunk func(chunk string)) (full string, err error)
}
