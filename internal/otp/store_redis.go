package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"complyd/pkg/platform/sentinel"
)

const codeKeyPrefix = "otp:email:"

// RedisStore is a Redis-backed code store. Expiry rides on the key TTL, so
// an expired code is indistinguishable from one that was never issued; that
// is acceptable because both answers tell the caller to request a new code.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	key := codeKeyPrefix + strings.ToLower(email)
	if err := s.client.Set(ctx, key, code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp code: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) error {
	key := codeKeyPrefix + strings.ToLower(email)

	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetch otp code: %w", err)
	}
	if stored != code {
		// A wrong guess must not burn the outstanding code.
		return sentinel.ErrNotFound
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume otp code: %w", err)
	}
	return nil
}
