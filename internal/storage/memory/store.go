// Package memory is an in-memory ConversationStore, used for tests and
// storage-free deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/storage"
)

// Store is an in-memory implementation of ConversationStore.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

var _ storage.ConversationStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{sessions: make(map[string][]domain.Turn)}
}

func (s *Store) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

func (s *Store) Close() error {
	return nil
}
