package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares the cache across API replicas. Errors are logged and
// treated as misses.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &RedisStore{rdb: rdb, ttl: ttl, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		}
		return nil, false
	}

	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte) {
	if err := s.rdb.Set(ctx, key, val, s.ttl).Err(); err != nil {
		s.log.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

func (s *RedisStore) InvalidatePrefix(ctx context.Context, prefix string) {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.WarnContext(ctx, "cache scan failed", "prefix", prefix, "err", err)
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.WarnContext(ctx, "cache invalidate failed", "prefix", prefix, "err", err)
	}
}
