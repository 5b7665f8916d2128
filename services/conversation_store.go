package services

import (
	"context"
	"sync"

	"classroom/models"
)

// ConversationStore keeps one append-only message history per tenant.
type ConversationStore interface {
	Append(ctx context.Context, colID string, msg models.Message) error
	Get(ctx context.Context, colID string) ([]models.Message, error)
	Clear(ctx context.Context, colID string) error
}

// MemoryStore is a process-local ConversationStore. Histories live until
// they are cleared.
type MemoryStore struct {
	mu        sync.RWMutex
	histories map[string][]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{histories: make(map[string][]models.Message)}
}

func (s *MemoryStore) Append(_ context.Context, colID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[colID] = append(s.histories[colID], msg)
	return nil
}

// Get returns a copy of the history so callers never alias stored state.
func (s *MemoryStore) Get(_ context.Context, colID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[colID]
	messages := make([]models.Message, len(history))
	copy(messages, history)
	return messages, nil
}

func (s *MemoryStore) Clear(_ context.Context, colID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, colID)
	return nil
}
