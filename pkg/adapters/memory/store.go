package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[int64][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[int64][]byte),
	}
}

// Save persists a serialized copy of the state, so callers cannot mutate it by pointer.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[state.ParticipantID] = raw
	return nil
}

// Load returns a fresh copy of the stored state.
func (s *Store) Load(ctx context.Context, participantID int64) (*domain.State, error) {
	s.mu.RLock()
	raw, ok := s.data[participantID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrStateNotFound
	}

	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state.Normalize(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, participantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, participantID)
	return nil
}

// Len returns the number of stored states.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
