// Package domain holds the shared types of the chat core: conversation
// turns, retrieved documents, and the request/result shapes exchanged
// with the orchestrator.
package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one message in a conversation. Turns are immutable once
// appended; ordering is append order.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// RetrievedDocument is a single knowledge-base passage. Index is
// 1-based and follows the relevance order returned by the retriever.
type RetrievedDocument struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// PromptContext carries everything needed to render one model prompt.
// It is built fresh per turn and never persisted.
type PromptContext struct {
	Instructions string
	Documents    []RetrievedDocument
	History      []Turn
	Question     string
}

// GenerationParams are the sampling parameters sent to the model.
type GenerationParams struct {
	MaxTokens     int
	Temperature   float32
	TopP          float32
	StopSequences []string
}

// ChatRequest is the validated input of one chat turn. SessionID is
// optional; when empty the orchestrator falls back to its
// process-lifetime session.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResult is the successful outcome of one chat turn.
type ChatResult struct {
	Query     string `json:"query"`
	Answer    string `json:"generated_response"`
	SessionID string `json:"session_id"`
}
