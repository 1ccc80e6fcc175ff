package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
)

// memRedis answers the handful of hash commands the store issues.
type memRedis struct {
	mu      sync.Mutex
	hashes  map[string]map[string][]byte
	expires map[string]int64
}

func newMemRedis() *memRedis {
	return &memRedis{
		hashes:  make(map[string]map[string][]byte),
		expires: make(map[string]int64),
	}
}

func (m *memRedis) pool() *redis.Pool {
	return &redis.Pool{
		Dial: func() (redis.Conn, error) { return &memConn{db: m}, nil },
	}
}

type memConn struct {
	db *memRedis
}

func (c *memConn) Close() error { return nil }

func (c *memConn) Err() error { return nil }

func (c *memConn) Send(string, ...interface{}) error { return fmt.Errorf("send not supported") }

func (c *memConn) Flush() error { return nil }

func (c *memConn) Receive() (interface{}, error) { return nil, fmt.Errorf("receive not supported") }

func (c *memConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	m := c.db
	m.mu.Lock()
	defer m.mu.Unlock()

	switch cmd {
	case "", "PING":
		return "PONG", nil
	case "HSET":
		h := m.hashes[args[0].(string)]
		if h == nil {
			h = make(map[string][]byte)
			m.hashes[args[0].(string)] = h
		}
		for i := 1; i+1 < len(args); i += 2 {
			h[args[i].(string)] = toBytes(args[i+1])
		}
		return int64(1), nil
	case "HMGET":
		h := m.hashes[args[0].(string)]
		out := make([]interface{}, 0, len(args)-1)
		for _, f := range args[1:] {
			if v, ok := h[f.(string)]; ok {
				out = append(out, v)
			} else {
				out = append(out, nil)
			}
		}
		return out, nil
	case "EXPIRE":
		m.expires[args[0].(string)] = args[1].(int64)
		return int64(1), nil
	case "DEL":
		delete(m.hashes, args[0].(string))
		return int64(1), nil
	}
	return nil, fmt.Errorf("unsupported command %s", cmd)
}

func toBytes(v interface{}) []byte {
	switch v := v.(type) {
	case []byte:
		return v
	case int64:
		return []byte(strconv.FormatInt(v, 10))
	case string:
		return []byte(v)
	}
	return []byte(fmt.Sprint(v))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mem := newMemRedis()
	store := newRedisStore(mem.pool(), 24*time.Hour)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "stocks-news"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	if err := store.Save(ctx, "stocks-news", Entry{Data: []byte(`[{"id":1}]`), FetchedAt: at}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := mem.expires[redisKeyPrefix+"stocks-news"]; got != 86400 {
		t.Errorf("expected 86400s expiry, got %d", got)
	}

	e, ok, err := store.Load(ctx, "stocks-news")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(e.Data) != `[{"id":1}]` || !e.FetchedAt.Equal(at) {
		t.Errorf("unexpected entry %+v", e)
	}

	if err := store.Delete(ctx, "stocks-news"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "stocks-news"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCacheOverRedisStore(t *testing.T) {
	mem := newMemRedis()
	ctx := context.Background()

	c := New(Config{TTL: time.Hour}, newRedisStore(mem.pool(), 0), nil)
	if _, err := Query(ctx, c, "related-deep-research:AAPL", func(context.Context) ([]item, error) {
		return []item{{ID: 9, Name: "shared"}}, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a second process sees the entry without fetching
	other := New(Config{TTL: time.Hour}, newRedisStore(mem.pool(), 0), nil)
	defer other.Close()
	items, err := Query(ctx, other, "related-deep-research:AAPL", func(context.Context) ([]item, error) {
		t.Error("entry from redis should be fresh")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "shared" {
		t.Errorf("unexpected items %+v", items)
	}
}
