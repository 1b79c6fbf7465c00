package llm

import "errors"

// Error kinds from the invocation contract (spec §4.5, §7).
var (
	ErrProviderUnavailable  = errors.New("llm: provider unavailable")
	ErrAllProvidersExhausted = errors.New("llm: all providers exhausted")
	ErrMalformedResponse    = errors.New("llm: malformed response")
	ErrTemplateError        = errors.New("llm: template error")
)
