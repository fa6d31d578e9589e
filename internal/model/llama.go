package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/prompt"
)

type llamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
}

type llamaResponse struct {
	Generation string `json:"generation"`
}

// Llama is the completion-style backend. It renders the whole turn as
// one instruction-fenced prompt string and invokes the model single-shot.
type Llama struct {
	invoker Invoker
	modelID string
	params  domain.GenerationParams
}

// NewLlama creates a Llama backend.
func NewLlama(invoker Invoker, modelID string, params domain.GenerationParams) *Llama {
	return &Llama{invoker: invoker, modelID: modelID, params: params}
}

func (l *Llama) Name() string { return "llama" }

// Render produces the invocation payload: instructions in the
// <<SYS>> fence, then the filled turn template closed by [/INST].
func (l *Llama) Render(pc domain.PromptContext) ([]byte, error) {
	turns := []domain.Turn{
		{Role: domain.RoleSystem, Text: pc.Instructions},
		{Role: domain.RoleUser, Text: prompt.Fill(prompt.CompletionTemplate, pc)},
	}

	req := llamaRequest{
		Prompt:      prompt.Fence(turns),
		MaxGenLen:   l.params.MaxTokens,
		Temperature: l.params.Temperature,
		TopP:        l.params.TopP,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return body, nil
}

func (l *Llama) Generate(ctx context.Context, pc domain.PromptContext) (string, error) {
	body, err := l.Render(pc)
	if err != nil {
		return "", err
	}

	raw, err := l.invoker.Invoke(ctx, l.modelID, body)
	if err != nil {
		return "", err
	}

	var resp llamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode generation: %w", err)
	}
	return resp.Generation, nil
}
