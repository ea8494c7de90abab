package wizard

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const slotKeyPrefix = "quest:draft:"

// SessionStore is the durable slot for one creator's in-progress wizard
// session. Load never fails: a missing or unreadable slot degrades to the
// default session at step 1.
type SessionStore interface {
	Load(ctx context.Context, ownerID string) Session
	Save(ctx context.Context, ownerID string, s Session) error
	Clear(ctx context.Context, ownerID string) error
}

// RedisStore keeps sessions in Redis with a TTL refreshed on every save.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, ownerID string) Session {
	b, err := s.rdb.Get(ctx, slotKey(ownerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("draft slot read error: %v", err)
		}
		return DefaultSession()
	}
	return decodeSession(b)
}

func (s *RedisStore) Save(ctx context.Context, ownerID string, session Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, slotKey(ownerID), b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, ownerID string) error {
	return s.rdb.Del(ctx, slotKey(ownerID)).Err()
}

// MemoryStore backs the wizard when Redis is not configured, and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, ownerID string) Session {
	s.mu.RLock()
	b, ok := s.data[ownerID]
	s.mu.RUnlock()
	if !ok {
		return DefaultSession()
	}
	return decodeSession(b)
}

func (s *MemoryStore) Save(_ context.Context, ownerID string, session Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[ownerID] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, ownerID string) error {
	s.mu.Lock()
	delete(s.data, ownerID)
	s.mu.Unlock()
	return nil
}

func slotKey(ownerID string) string {
	return slotKeyPrefix + ownerID
}

// decodeSession unmarshals over the defaults so fields absent from an older
// envelope keep their default values. Corrupt data is treated as no prior
// draft, never as a fatal error.
func decodeSession(b []byte) Session {
	s := DefaultSession()
	if err := json.Unmarshal(b, &s); err != nil {
		log.Printf("draft slot corrupt, starting fresh: %v", err)
		return DefaultSession()
	}
	if s.CurrentStep < StepLocation || s.CurrentStep > StepReview {
		return DefaultSession()
	}
	return s
}
