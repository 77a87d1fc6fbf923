package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript increments the counter and opens the window on first
// use in one round trip. Returns {count, pttl}.
var incrementScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisStore keeps counters in Redis so several instances share one budget.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client, prefix: opts.Prefix, now: time.Now}, nil
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, d time.Duration) (int64, time.Time, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, d.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis increment: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis increment: unexpected reply length %d", len(res))
	}
	return res[0], s.now().Add(time.Duration(res[1]) * time.Millisecond), nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
