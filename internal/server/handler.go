package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/storage"
)

// Processor runs one chat turn. Satisfied by chat.Orchestrator.
type Processor interface {
	Process(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}

// Handler exposes the chat orchestrator over HTTP.
type Handler struct {
	processor Processor
	store     storage.ConversationStore
	logger    *slog.Logger
}

func NewHandler(processor Processor, store storage.ConversationStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{processor: processor, store: store, logger: logger}
}

// Register mounts the chat routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/chat", h.Chat)
	r.Get("/v1/history/{sessionID}", h.History)
	r.Get("/healthz", h.Health)
}

// chatResponse is the success envelope. statusCode is mirrored in the
// HTTP status line; the body field names are part of the external
// contract and must not change.
type chatResponse struct {
	StatusCode int    `json:"statusCode"`
	Query      string `json:"query"`
	Answer     string `json:"generated_response"`
	SessionID  string `json:"session_id,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// errorResponse is the rejection and failure envelope.
type errorResponse struct {
	StatusCode int       `json:"statusCode"`
	Body       errorBody `json:"body"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body carries no query, which is the same
		// contract violation as an empty one.
		h.writeError(w, r, domain.ErrNoQuery())
		return
	}

	AddLogField(r.Context(), "session_id", req.SessionID)

	result, err := h.processor.Process(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		StatusCode: http.StatusOK,
		Query:      result.Query,
		Answer:     result.Answer,
		SessionID:  result.SessionID,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := h.store.History(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, domain.ErrUpstream("history read", err))
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	te := domain.AsTurnError(err)
	status := te.HTTPStatusCode()

	body := errorBody{Error: te.Message}
	if status == http.StatusInternalServerError {
		// Upstream details go in a separate field; the error text stays
		// a fixed, non-leaking string.
		body.Error = "An unexpected error occurred."
		if te.Err != nil {
			body.Details = te.Err.Error()
		} else {
			body.Details = te.Message
		}
	}

	writeJSON(w, status, errorResponse{StatusCode: status, Body: body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
