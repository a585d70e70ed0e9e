package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the last order confirmation per session. Each new
// confirmation overwrites the previous one; nothing accumulates.
type SessionStore interface {
	SaveLast(ctx context.Context, sessionID string, c Confirmation) error
	Last(ctx context.Context, sessionID string) (*Confirmation, error)
}

const sessionTTL = 24 * time.Hour

// RedisSessionStore persists the last confirmation in Redis so sessions
// survive process restarts.
type RedisSessionStore struct {
	redis *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return "triage:last_order:" + sessionID
}

// SaveLast overwrites the session's last confirmation.
func (s *RedisSessionStore) SaveLast(ctx context.Context, sessionID string, c Confirmation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("orders: marshal confirmation: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sessionID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("orders: save confirmation: %w", err)
	}
	return nil
}

// Last returns the session's last confirmation, or nil when none exists.
func (s *RedisSessionStore) Last(ctx context.Context, sessionID string) (*Confirmation, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("orders: load confirmation: %w", err)
	}
	var c Confirmation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("orders: unmarshal confirmation: %w", err)
	}
	return &c, nil
}

// MemorySessionStore is the in-process fallback used when Redis is not
// configured.
type MemorySessionStore struct {
	mu   sync.RWMutex
	last map[string]Confirmation
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{last: make(map[string]Confirmation)}
}

// SaveLast overwrites the session's last confirmation.
func (s *MemorySessionStore) SaveLast(ctx context.Context, sessionID string, c Confirmation) error {
	s.mu.Lock()
	s.last[sessionID] = c
	s.mu.Unlock()
	return nil
}

// Last returns the session's last confirmation, or nil when none exists.
func (s *MemorySessionStore) Last(ctx context.Context, sessionID string) (*Confirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.last[sessionID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
