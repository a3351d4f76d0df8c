package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key).Bytes()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

// SetBatch writes all entries in one pipelined round trip.
func (s *Store) SetBatch(ctx context.Context, entries map[string]interface{}, expiration time.Duration) error {
	pipe := s.client.TxPipeline()
	for key, value := range entries {
		pipe.Set(ctx, key, value, expiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// The lex-ops below maintain a sorted key space (every member scored 0) so
// callers can range-scan identifiers by prefix - redis hashes and plain keys
// have no ordered iteration of their own.

func (s *Store) ZAddLex(ctx context.Context, key string, members ...string) error {
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: 0, Member: m}
	}
	return s.client.ZAdd(ctx, key, zs...).Err()
}

func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.ZRem(ctx, key, args...).Err()
}

// ZRangeByLex runs the half-open scan [min, max): "[" + min inclusive,
// "(" + max exclusive, per redis lex-range syntax.
func (s *Store) ZRangeByLex(ctx context.Context, key string, min string, max string) ([]string, error) {
	return s.client.ZRangeByLex(ctx, key, &redis.ZRangeBy{
		Min: "[" + min,
		Max: "(" + max,
	}).Result()
}

// ZRangeAll lists every member of the sorted key space in order.
func (s *Store) ZRangeAll(ctx context.Context, key string) ([]string, error) {
	return s.client.ZRangeByLex(ctx, key, &redis.ZRangeBy{
		Min: "-",
		Max: "+",
	}).Result()
}
