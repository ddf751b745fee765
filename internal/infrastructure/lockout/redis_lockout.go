package lockout

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xbpneus/authgate/domain"
)

// RedisLockout implements domain.LockoutService with a failure counter and
// a lock key per attempt key. Failures are counted inside a sliding window
// of cooloff; reaching limit sets the lock for cooloff.
type RedisLockout struct {
	client  *redis.Client
	prefix  string
	limit   int64
	cooloff time.Duration
}

// NewRedisLockout creates a new Redis backed lockout tracker
func NewRedisLockout(client *redis.Client, prefix string, limit int, cooloff time.Duration) *RedisLockout {
	return &RedisLockout{
		client:  client,
		prefix:  prefix,
		limit:   int64(limit),
		cooloff: cooloff,
	}
}

func (l *RedisLockout) failKey(key string) string { return l.prefix + ":fail:" + key }
func (l *RedisLockout) lockKey(key string) string { return l.prefix + ":lock:" + key }

// IsLocked implements domain.LockoutService
func (l *RedisLockout) IsLocked(ctx context.Context, key string) (bool, time.Duration, error) {
	ttl, err := l.client.PTTL(ctx, l.lockKey(key)).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl <= 0 {
		return false, 0, nil
	}
	return true, ttl, nil
}

// RegisterFailure implements domain.LockoutService. It reports true when
// this failure locked the key.
func (l *RedisLockout) RegisterFailure(ctx context.Context, key string) (bool, error) {
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, l.failKey(key))
	pipe.Expire(ctx, l.failKey(key), l.cooloff)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if incr.Val() < l.limit {
		return false, nil
	}

	pipe = l.client.TxPipeline()
	pipe.Set(ctx, l.lockKey(key), "1", l.cooloff)
	pipe.Del(ctx, l.failKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Reset implements domain.LockoutService
func (l *RedisLockout) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.failKey(key), l.lockKey(key)).Err()
}

// NopLockout never locks. Used when lockout is disabled.
type NopLockout struct{}

func (NopLockout) IsLocked(context.Context, string) (bool, time.Duration, error) { return false, 0, nil }
func (NopLockout) RegisterFailure(context.Context, string) (bool, error)         { return false, nil }
func (NopLockout) Reset(context.Context, string) error                           { return nil }

var (
	_ domain.LockoutService = (*RedisLockout)(nil)
	_ domain.LockoutService = NopLockout{}
)
