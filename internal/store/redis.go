package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the token in Redis under a per-profile key
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store for profile
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	return &RedisStore{client: client, key: RedisKey(profile)}
}

// RedisKey returns the Redis key holding profile's token
func RedisKey(profile string) string {
	return fmt.Sprintf("session:%s:%s", profile, TokenKey)
}

// Read returns the persisted token
func (r *RedisStore) Read(ctx context.Context) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session token: %w", err)
	}

	return token, token != "", nil
}

// Write persists the token without expiry; the token's own exp is checked on decode
func (r *RedisStore) Write(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}

// Clear removes the persisted token
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
