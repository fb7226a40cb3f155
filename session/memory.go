package session

import (
	"context"
	"fmt"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a Store that keeps sessions in process memory.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*Session)}
}

func (m *memoryStore) Save(_ context.Context, s *Session) error {
	if err := validate(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.sessions[s.ID]; ok && prev.Status == StatusDone && s.Status != StatusDone {
		return fmt.Errorf("%w: %s", ErrStatusRegression, s.ID)
	}

	stamp(s)
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Clone(), nil
}

func (m *memoryStore) ListRunning(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.Status == StatusRunning {
			summaries = append(summaries, s.Summarize())
		}
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (m *memoryStore) Close() error { return nil }
