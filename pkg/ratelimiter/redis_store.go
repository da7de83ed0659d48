package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs the same refill-then-consume step as MemoryStore
// atomically on the server. Times are unix milliseconds.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local tokens = tonumber(ARGV[5])
local ttl = tonumber(ARGV[6])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local t = tonumber(state[1])
local refill = tonumber(state[2])
if t == nil then
	t = capacity
	refill = now
end

local n = math.floor((now - refill) / interval)
local maxn = math.floor(capacity / rate) + 1
if n > maxn then n = maxn end
if n > 0 then
	t = math.min(t + n * rate, capacity)
	refill = now
end

t = t - tokens
redis.call('HSET', KEYS[1], 'tokens', t, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], ttl)
return {t, refill + interval}
`)

// RedisStore shares buckets between instances through Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "venuehub:ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	interval := config.RefillInterval.Milliseconds()
	if interval <= 0 {
		interval = 1
	}
	// Keep the key until a drained bucket would be full again.
	ttl := (int64(config.Capacity/config.RefillRate) + 2) * interval

	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		config.Capacity,
		config.RefillRate,
		interval,
		time.Now().UnixMilli(),
		tokens,
		ttl,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply %v", ErrStoreUnavailable, res)
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
