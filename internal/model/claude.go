package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/prompt"
)

const anthropicVersion = "bedrock-2023-05-31"

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float32         `json:"temperature"`
	Messages         []claudeMessage `json:"messages"`
	System           string          `json:"system,omitempty"`
	StopSequences    []string        `json:"stop_sequences,omitempty"`
}

// Claude is the message-style backend. It renders prior turns as
// role-tagged messages with the instructions in the top-level system
// field, and streams the response.
type Claude struct {
	invoker Invoker
	modelID string
	params  domain.GenerationParams
}

// NewClaude creates a Claude backend.
func NewClaude(invoker Invoker, modelID string, params domain.GenerationParams) *Claude {
	return &Claude{invoker: invoker, modelID: modelID, params: params}
}

func (c *Claude) Name() string { return "claude" }

// Render produces the invocation payload for one prompt context. The
// current question travels as the final user message, rendered through
// the fixed turn template.
func (c *Claude) Render(pc domain.PromptContext) ([]byte, error) {
	messages := make([]claudeMessage, 0, len(pc.History)+1)
	for _, turn := range pc.History {
		switch turn.Role {
		case domain.RoleUser:
			messages = append(messages, claudeMessage{Role: "user", Content: turn.Text})
		case domain.RoleAssistant:
			messages = append(messages, claudeMessage{Role: "assistant", Content: turn.Text})
		case domain.RoleSystem:
			// Instructions travel in the system field, never as a message.
		}
	}
	messages = append(messages, claudeMessage{Role: "user", Content: prompt.Fill(prompt.MessageTemplate, pc)})

	req := claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        c.params.MaxTokens,
		Temperature:      c.params.Temperature,
		Messages:         messages,
		System:           pc.Instructions,
		StopSequences:    c.params.StopSequences,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return body, nil
}

func (c *Claude) Generate(ctx context.Context, pc domain.PromptContext) (string, error) {
	body, err := c.Render(pc)
	if err != nil {
		return "", err
	}

	frames, err := c.invoker.InvokeStream(ctx, c.modelID, body)
	if err != nil {
		return "", err
	}

	return Collect(ctx, DecodeStream(ctx, frames, ExtractMessageDelta))
}
