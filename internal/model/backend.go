// Package model invokes hosted LLMs through the Bedrock runtime. Each
// model family is a Backend: it renders the prompt context into the
// family's payload shape and decodes the family's response shape back
// into answer text.
package model

import (
	"context"
	"strings"

	"github.com/shopassist/kbchat/internal/domain"
)

// Backend produces a complete answer for one prompt context. Concrete
// backends own the choice between streaming and single-shot invocation.
type Backend interface {
	Name() string
	Generate(ctx context.Context, pc domain.PromptContext) (string, error)
}

// Generation defaults per model family, matching the deployed
// configuration.
var (
	claudeDefaults = domain.GenerationParams{MaxTokens: 500, Temperature: 0.7}
	llamaDefaults  = domain.GenerationParams{MaxTokens: 512, Temperature: 0.7, TopP: 0.9}
)

// Select picks the backend for a model identifier. Anthropic models use
// the streaming message shape; everything else gets the completion
// shape.
func Select(modelID string, invoker Invoker) Backend {
	if strings.Contains(modelID, "anthropic") {
		return NewClaude(invoker, modelID, claudeDefaults)
	}
	return NewLlama(invoker, modelID, llamaDefaults)
}
