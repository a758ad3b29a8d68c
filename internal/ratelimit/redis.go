package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter implements the fixed window with INCR + EXPIRE so counters are
// shared across instances. It fails open: when Redis is unreachable the
// request is allowed, because the limiter is a throttle, not the last line of
// defense.
type RedisLimiter struct {
	client *redis.Client
	limits Limits
	window time.Duration
	logger *zap.Logger
}

// NewRedis builds a Redis-backed limiter.
func NewRedis(client *redis.Client, limits Limits, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, limits: limits, window: window, logger: logger}
}

// Check consumes one unit of quota for the key if available.
func (r *RedisLimiter) Check(key string, class Class) Result {
	max := r.limits.Max(class)
	redisKey := "ratelimit:" + key + ":" + string(class)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		r.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
		return Result{Allowed: true, Limit: max, Remaining: max}
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			r.logger.Warn("rate limit expire failed", zap.Error(err))
		}
	}

	if int(count) > max {
		ttl, err := r.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = r.window
		}
		return Result{Allowed: false, Limit: max, Remaining: 0, RetryAfter: ttl}
	}

	return Result{Allowed: true, Limit: max, Remaining: max - int(count)}
}
