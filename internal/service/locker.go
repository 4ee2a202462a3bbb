package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Locker.Lock when another holder owns the key.
var ErrLocked = errors.New("locked")

// Locker serializes work on one key across server instances.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// NopLocker never blocks.  It is used when Redis is not configured; the
// store's compare-and-set keeps confirmation exactly-once on its own.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string, time.Duration) (func(), error) { return func() {}, nil }

// RedisLocker takes a SET NX lock holding a random token.  Unlock deletes
// the key only while it still holds that token.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLocker(rdb *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: prefix}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	full := l.prefix + ":lock:" + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, l.rdb, []string{full}, token).Err()
	}, nil
}
