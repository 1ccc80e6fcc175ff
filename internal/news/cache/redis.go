package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

const redisKeyPrefix = "newsdesk:cache:"

// RedisStore persists cache entries as redis hashes. Entries expire after
// Expiry so abandoned symbols do not pile up.
type RedisStore struct {
	pool   *redis.Pool
	expiry time.Duration
}

// NewRedisStore connects lazily to the redis server at addr.
func NewRedisStore(addr string, expiry time.Duration) *RedisStore {
	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return newRedisStore(pool, expiry)
}

func newRedisStore(pool *redis.Pool, expiry time.Duration) *RedisStore {
	return &RedisStore{pool: pool, expiry: expiry}
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	values, err := redis.Values(conn.Do("HMGET", redisKeyPrefix+key, "data", "fetched_at"))
	if err != nil {
		return Entry{}, false, err
	}
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return Entry{}, false, nil
	}

	data, err := redis.Bytes(values[0], nil)
	if err != nil {
		return Entry{}, false, err
	}
	at, err := redis.Int64(values[1], nil)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Data: data, FetchedAt: time.Unix(0, at)}, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, e Entry) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	k := redisKeyPrefix + key
	if _, err := conn.Do("HSET", k, "data", e.Data, "fetched_at", e.FetchedAt.UnixNano()); err != nil {
		return err
	}
	if s.expiry > 0 {
		if _, err := conn.Do("EXPIRE", k, int64(s.expiry/time.Second)); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	_, err = conn.Do("DEL", redisKeyPrefix+key)
	return err
}

func (s *RedisStore) Close() error {
	return s.pool.Close()
}
