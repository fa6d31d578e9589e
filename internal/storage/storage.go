// Package storage defines the conversation history store: an
// append-only per-session turn log.
package storage

import (
	"context"

	"github.com/shopassist/kbchat/internal/domain"
)

// ConversationStore is the append-only turn log. There is no update or
// delete, and no transaction spans a History read and the Append that
// follows it; two invocations sharing a session can interleave.
type ConversationStore interface {
	// History returns all turns for a session in append order. Unknown
	// sessions yield an empty slice, not an error.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Append adds one turn to the end of the session's log.
	Append(ctx context.Context, sessionID string, turn domain.Turn) error

	Close() error
}
