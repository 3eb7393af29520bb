package registry

import (
	"sync"

	"werewolf-arena/internal/game"
)

// Store is the pluggable session storage behind the registry. The default is
// a process-local map; the interface leaves room for a shared key-value
// implementation when several processes cooperate.
type Store interface {
	Get(id string) (*game.Session, bool)
	Put(id string, s *game.Session)
	Delete(id string) bool
	Len() int
	Range(fn func(id string, s *game.Session) bool)
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*game.Session{}}
}

func (m *MemoryStore) Get(id string) (*game.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MemoryStore) Put(id string, s *game.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
}

func (m *MemoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Range(fn func(id string, s *game.Session) bool) {
	m.mu.RLock()
	snapshot := make(map[string]*game.Session, len(m.sessions))
	for id, s := range m.sessions {
		snapshot[id] = s
	}
	m.mu.RUnlock()
	for id, s := range snapshot {
		if !fn(id, s) {
			return
		}
	}
}
