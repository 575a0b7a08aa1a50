package chaos

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisSource reads the denylist from a Redis set. Operators toggle
// injection with SADD/SREM on the configured key.
type RedisSource struct {
	client *redis.Client
	key    string
}

func NewRedisSource(addr, password string, db int, key string) *RedisSource {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Denied(ctx context.Context) ([]string, error) {
	ops, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading denylist %q: %w", s.key, err)
	}
	return ops, nil
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}
