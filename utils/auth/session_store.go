package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/eduventure/eduventure-api/utils/cache"
)

// ErrSessionNotFound means the session record does not exist or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists session records keyed by token ID.
type SessionStore interface {
	Put(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Get(ctx context.Context, id string) (uint, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps session records in Redis so sessions survive
// restarts and are shared across instances.
type RedisSessionStore struct {
	cache *cache.RedisCache
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(redisCache *cache.RedisCache) *RedisSessionStore {
	return &RedisSessionStore{cache: redisCache}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) Put(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	return s.cache.Set(ctx, sessionKey(id), strconv.FormatUint(uint64(userID), 10), ttl)
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (uint, error) {
	val, err := s.cache.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(userID), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKey(id))
}

type memorySession struct {
	userID    uint
	expiresAt time.Time
}

// MemorySessionStore is the fallback when Redis is not configured.
// Sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

// NewMemorySessionStore creates an in-process session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Put(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, id)
		return 0, ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
