// Package limiter throttles repeated failed logins per email address using
// a fixed Redis counter window.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the Redis backend could not be reached.
var ErrUnavailable = errors.New("login limiter backend unavailable")

type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// LoginLimiter counts failures under "mml:<email>". The counter expires
// Cooldown after the first failure in a window.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewLoginLimiter(redisClient redis.UniversalClient, cfg Config) *LoginLimiter {
	return &LoginLimiter{redis: redisClient, config: cfg}
}

func (l *LoginLimiter) key(email string) string {
	return "mml:" + email
}

// Allow returns common.ErrTooManyAttempts once MaxAttempts failures have
// been recorded inside the current window.
func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count >= int64(l.config.MaxAttempts) {
		return common.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure increments the failure counter for email.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	count, err := l.redis.Incr(ctx, l.key(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(email), l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Noop never throttles. Used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) error         { return nil }
func (Noop) RecordFailure(context.Context, string) error { return nil }
func (Noop) Reset(context.Context, string) error         { return nil }
