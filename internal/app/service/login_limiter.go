package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter tracks consecutive failed logins per email.
type LoginLimiter interface {
	Locked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noopLimiter struct{}

func (noopLimiter) Locked(context.Context, string) (bool, error) { return false, nil }
func (noopLimiter) RecordFailure(context.Context, string) error  { return nil }
func (noopLimiter) Reset(context.Context, string) error          { return nil }

// failureStore is the subset of *redis.Client the limiter needs.
type failureStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLoginLimiter locks an email out for window once maxAttempts failures
// accumulate. The window starts at the first failure; a counter left without a
// TTL gets one on the next failure.
type RedisLoginLimiter struct {
	rdb         failureStore
	maxAttempts int
	window      time.Duration
}

func NewRedisLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return newRedisLoginLimiter(rdb, maxAttempts, window)
}

func newRedisLoginLimiter(rdb failureStore, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLoginLimiter) key(email string) string {
	return "login_failures:" + email
}

func (l *RedisLoginLimiter) Locked(ctx context.Context, email string) (bool, error) {
	n, err := l.rdb.Get(ctx, l.key(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read login failures: %w", err)
	}
	return n >= l.maxAttempts, nil
}

func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if n > 1 {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to read login failure window: %w", err)
		}
		if ttl >= 0 {
			return nil
		}
	}
	if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
		return fmt.Errorf("failed to set login failure window: %w", err)
	}
	return nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.rdb.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}
