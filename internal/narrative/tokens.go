package narrative

import "github.com/pkoukk/tiktoken-go"

// tokenEstimator loads a cl100k_base encoding once, when the Manager is
// built, and counts tokens for
// logging/observability only; it never gates the character-based budget.
type tokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

func newTokenEstimator() *tokenEstimator {
	enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return &tokenEstimator{}
	}
	return &tokenEstimator{encoding: enc}
}

// estimate returns 0 if the encoding failed to load rather than erroring;
// the caller only logs this value.
func (e *tokenEstimator) estimate(text string) int {
	if e == nil || e.encoding == nil || text == "" {
		return 0
	}
	return len(e.encoding.Encode(text, nil, nil))
}
