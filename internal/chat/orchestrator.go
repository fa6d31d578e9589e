// Package chat wires retrieval, prompt assembly, model invocation,
// guardrail checks, and history persistence into the per-turn flow.
package chat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/guard"
	"github.com/shopassist/kbchat/internal/model"
	"github.com/shopassist/kbchat/internal/prompt"
	"github.com/shopassist/kbchat/internal/retrieval"
	"github.com/shopassist/kbchat/internal/storage"
	"github.com/shopassist/kbchat/internal/tokens"
)

// Orchestrator processes chat turns sequentially: validate, guard
// input, load history, retrieve, assemble, invoke, guard output,
// persist. No step retries; every external failure fails the turn.
type Orchestrator struct {
	backend      model.Backend
	retriever    retrieval.Retriever
	guard        *guard.Guard // nil when no guardrail is configured
	store        storage.ConversationStore
	instructions string
	estimator    *tokens.Estimator
	logger       *slog.Logger

	// defaultSession scopes turns from callers that do not supply a
	// session of their own. It lives for the process lifetime, so such
	// callers share one history within a warm process.
	defaultSession string
}

// Options configures optional orchestrator collaborators.
type Options struct {
	Guard        *guard.Guard
	Instructions string
	Logger       *slog.Logger
}

// New creates an Orchestrator.
func New(backend model.Backend, retriever retrieval.Retriever, store storage.ConversationStore, opts Options) *Orchestrator {
	instructions := opts.Instructions
	if instructions == "" {
		instructions = prompt.DefaultInstructions
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		backend:        backend,
		retriever:      retriever,
		guard:          opts.Guard,
		store:          store,
		instructions:   instructions,
		estimator:      tokens.NewEstimator(),
		logger:         logger,
		defaultSession: uuid.New().String(),
	}
}

// Process runs one chat turn to completion. Errors are *domain.TurnError
// (validation, blocked) or wrapped upstream failures; the HTTP layer
// maps them onto the response envelope. The user turn is appended
// before the model is invoked, so a failure mid-generation leaves an
// unanswered question in history; that is accepted, not rolled back.
func (o *Orchestrator) Process(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error) {
	if req.Query == "" {
		o.logger.Error("no query provided in the event")
		return nil, domain.ErrNoQuery()
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = o.defaultSession
	}

	o.logger.Info("processing chat turn",
		slog.String("session_id", sessionID),
		slog.String("backend", o.backend.Name()),
	)

	// Input guard runs before any retrieval or model spend.
	if err := o.guard.Check(ctx, req.Query, guard.SourceInput); err != nil {
		return nil, err
	}

	history, err := o.store.History(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrUpstream("history read", err)
	}
	o.logger.Info("retrieved chat history", slog.Int("turns", len(history)))

	// The question is recorded before generation; see the package note
	// on the resulting consistency window.
	if err := o.store.Append(ctx, sessionID, domain.Turn{Role: domain.RoleUser, Text: req.Query}); err != nil {
		return nil, domain.ErrUpstream("history append", err)
	}

	docs, err := o.retriever.Retrieve(ctx, req.Query)
	if err != nil {
		return nil, domain.ErrUpstream("retrieval", err)
	}
	o.logger.Info("retrieved relevant documents", slog.Int("documents", len(docs)))

	pc := domain.PromptContext{
		Instructions: o.instructions,
		Documents:    docs,
		History:      history,
		Question:     req.Query,
	}

	estimated := o.estimator.Estimate(prompt.ContextBlock(docs)) +
		o.estimator.Estimate(prompt.HistoryBlock(history)) +
		o.estimator.Estimate(req.Query)
	o.logger.Info("invoking model", slog.Int("estimated_prompt_tokens", estimated))

	answer, err := o.backend.Generate(ctx, pc)
	if err != nil {
		return nil, domain.ErrUpstream("model invocation", err)
	}
	o.logger.Info("model response generated", slog.Int("answer_len", len(answer)))

	// Output guard sees the complete accumulated answer.
	if err := o.guard.Check(ctx, answer, guard.SourceOutput); err != nil {
		return nil, err
	}

	if err := o.store.Append(ctx, sessionID, domain.Turn{Role: domain.RoleAssistant, Text: answer}); err != nil {
		return nil, domain.ErrUpstream("history append", err)
	}

	return &domain.ChatResult{
		Query:     req.Query,
		Answer:    answer,
		SessionID: sessionID,
	}, nil
}

// DefaultSessionID exposes the process-lifetime session, mainly for
// history inspection.
func (o *Orchestrator) DefaultSessionID() string {
	return o.defaultSession
}
