package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// scanBatchSize is the COUNT hint passed to SCAN when listing by prefix.
const scanBatchSize = 200

// RedisStore stores documents as plain Redis string values and counters
// as Redis integers, so Increment maps directly onto INCR (atomic on the
// server, no lost updates under concurrent writers).
type RedisStore struct {
	redis  *redis.Client
	logger zerolog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed document store.
func NewRedisStore(redisClient *redis.Client, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		logger: logger,
	}
}

// Get returns the document at key. Returns ErrNotFound on miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		storeErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return doc, nil
}

// Put stores the document at key without expiry. Entities live until an
// admin deletes them; staleness is signalled by the version counter, not TTL.
func (s *RedisStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := s.redis.Set(ctx, key, doc, 0).Err(); err != nil {
		storeErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the document at key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		storeErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// List scans for keys matching prefix and fetches their documents in one
// MGET per scan batch.
func (s *RedisStore) List(ctx context.Context, prefix string) ([][]byte, error) {
	var docs [][]byte
	var cursor uint64

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			storeErrors.WithLabelValues("list").Inc()
			return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
		}

		if len(keys) > 0 {
			vals, err := s.redis.MGet(ctx, keys...).Result()
			if err != nil {
				storeErrors.WithLabelValues("list").Inc()
				return nil, fmt.Errorf("redis mget: %w", err)
			}
			for i, v := range vals {
				switch doc := v.(type) {
				case nil:
					// Key expired or deleted between SCAN and MGET.
					continue
				case string:
					docs = append(docs, []byte(doc))
				case []byte:
					docs = append(docs, doc)
				default:
					s.logger.Warn().
						Str("key", keys[i]).
						Msg("Unexpected value type from MGET, skipping")
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return docs, nil
}

// Increment atomically increments the counter at key via INCR.
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	v, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		storeErrors.WithLabelValues("incr").Inc()
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return v, nil
}

// Counter returns the counter at key, 0 if missing.
func (s *RedisStore) Counter(ctx context.Context, key string) (int64, error) {
	v, err := s.redis.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		storeErrors.WithLabelValues("get").Inc()
		return 0, fmt.Errorf("redis get counter %s: %w", key, err)
	}
	return v, nil
}
