// Package cache holds short-lived keys: the sweeper lease and processed
// webhook ids.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type Store interface {
	// SetNX stores key with ttl unless it already exists and reports
	// whether it was stored.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Release deletes key only while it still holds value.
	Release(ctx context.Context, key, value string) error
}

// ===============================
// Redis
// ===============================

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) Release(ctx context.Context, key, value string) error {
	err := releaseScript.Run(ctx, s.client, []string{key}, value).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

// ===============================
// Memory
// ===============================

type entry struct {
	value   string
	expires time.Time
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]entry{}, now: time.Now}
}

func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.data[key]; ok && now.Before(e.expires) {
		return false, nil
	}
	s.data[key] = entry{value: value, expires: now.Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.data[key]; ok && e.value == value {
		delete(s.data, key)
	}
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
