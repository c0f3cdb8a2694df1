package goal

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the goal service. Keys expire after ~3 months so stale
// monthly entries do not accumulate.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return raw, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 90*24*time.Hour).Err()
}
