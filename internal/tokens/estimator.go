// Package tokens provides prompt-size estimation for logging. The
// orchestrator performs no truncation or budget enforcement; counts are
// observability only.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Estimator approximates token counts with a cl100k_base codec,
// falling back to a chars/4 heuristic when the codec is unavailable.
// Bedrock models use their own tokenizers, so either path is an
// estimate, not an exact count.
type Estimator struct {
	once  sync.Once
	codec tokenizer.Codec
}

// NewEstimator creates an Estimator. Codec initialization is deferred
// to the first Estimate call.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the approximate token count of text.
func (e *Estimator) Estimate(text string) int {
	e.once.Do(func() {
		if codec, err := tokenizer.Get(tokenizer.Cl100kBase); err == nil {
			e.codec = codec
		}
	})

	if e.codec != nil {
		if ids, _, err := e.codec.Encode(text); err == nil {
			return len(ids)
		}
	}

	return len(text) / 4
}
