package store

import (
	"context"
	"sync"

	"github.com/wwwxxch/linebot-genai/internal/model"
)

type memoryStore struct {
	mu     sync.Mutex
	states map[string]*model.ConversationState
}

// NewMemoryStore creates an in-process ConversationStore. Used for local
// development and tests; checkpoints do not survive a restart.
func NewMemoryStore() ConversationStore {
	return &memoryStore{
		states: make(map[string]*model.ConversationState),
	}
}

func (s *memoryStore) Load(_ context.Context, threadID string) (*model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

func (s *memoryStore) Save(_ context.Context, state *model.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored int64
	if existing, ok := s.states[state.ThreadID]; ok {
		stored = existing.Version
	}
	if stored != state.Version {
		return ErrVersionConflict
	}

	next := state.Clone()
	next.Version = state.Version + 1
	s.states[state.ThreadID] = next

	state.Version = next.Version
	return nil
}

func (s *memoryStore) RemoveMessages(_ context.Context, threadID string, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[threadID]
	if !ok {
		return ErrNotFound
	}

	remove := make(map[int64]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		remove[id] = struct{}{}
	}

	kept := state.Messages[:0]
	for _, msg := range state.Messages {
		if _, ok := remove[msg.ID]; !ok {
			kept = append(kept, msg)
		}
	}
	state.Messages = kept
	state.Version++

	return nil
}
