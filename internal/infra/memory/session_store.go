package memory

import (
	"sync"

	"wordmatch-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu     sync.RWMutex
	tables map[string]*app.Table
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tables: make(map[string]*app.Table),
	}
}

func (s *SessionStore) Save(table *app.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.ID()] = table
}

func (s *SessionStore) Get(gameID string) (*app.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[gameID]
	return table, ok
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, gameID)
}

// Len returns the number of live games.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
