package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps the sliding window in a shared Redis sorted set so
// several server processes enforce one combined limit. The check and the
// record are a single Lua script, so concurrent calls for the same user
// cannot both take the last slot.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return 0
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return 1
`)

func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisLimiter) TryAcquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := fmt.Sprintf("ratelimit:subm:%s", userID)
	member := uuid.NewString()
	now := time.Now().UnixMilli()

	res, err := slidingWindowScript.Run(ctx, l.rdb, []string{key},
		now, l.window.Milliseconds(), l.limit, member).Int()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	return res == 1, nil
}
