package llm

// Options carries the sampling parameters forwarded to a provider call,
// sourced from LLM_TEMPERATURE, LLM_STREAMING, LLM_TOP_K, LLM_TOP_P, and
// LLM_REPEAT_PENALTY.
type Options struct {
	Temperature   float64
	TopK          int
	TopP          float64
	RepeatPenalty float64
	Streaming     bool
}

// Request is what an Invoker hands to a Provider after template rendering.
type Request struct {
	Prompt  string
	Options Options
}
