// pkg/session/redis.go
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	cli *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a Store backed by Redis so session slots
// survive process restarts and are shared across instances.
func NewRedisStore(cli *redis.Client, ttl time.Duration) Store {
	return &redisStore{cli: cli, ttl: ttl}
}

func (r *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.cli.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *redisStore) Set(ctx context.Context, key, value string) error {
	return r.cli.Set(ctx, key, value, r.ttl).Err()
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	return r.cli.Del(ctx, key).Err()
}
