package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State), now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, st State) error {
	id := strings.TrimSpace(st.ID)
	if id == "" {
		return ErrInvalid
	}
	m.mu.Lock()
	m.sessions[id] = st
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (State, error) {
	m.mu.RLock()
	st, ok := m.sessions[strings.TrimSpace(id)]
	m.mu.RUnlock()
	if !ok || st.Expired(m.now()) {
		return State{}, ErrNotFound
	}
	return st, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, strings.TrimSpace(id))
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns their ids.
func (m *MemoryStore) Sweep() []string {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, st := range m.sessions {
		if st.Expired(now) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
