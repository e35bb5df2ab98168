package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"wordmatch-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Tables stay in a local map; their link state and broadcasts are in-process.
//   - Redis holds a liveness marker per game (set id and player) so other
//     instances and operators can see which games are running.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	tables map[string]*app.Table
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		tables: make(map[string]*app.Table),
	}
}

func (s *SessionStore) Save(table *app.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.ID()] = table
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(table.ID()), table.SetID(), s.ttl).Err()
}

func (s *SessionStore) Get(gameID string) (*app.Table, bool) {
	s.mu.RLock()
	table, ok := s.tables[gameID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(gameID), s.ttl).Err()
	}
	return table, ok
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, gameID)
	_ = s.client.Del(context.Background(), s.key(gameID)).Err()
}

func (s *SessionStore) key(gameID string) string {
	return "wordmatch:game:" + gameID
}
