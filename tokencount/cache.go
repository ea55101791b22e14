package tokencount

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cache memoizes token counts for small JSON fragments (spec §5, §9),
// read-mostly and safe for concurrent use.
type cache interface {
	Get(ctx context.Context, key string) (int, bool)
	Set(ctx context.Context, key string, n int)
}

// lruCache is the default in-process backend: a sharded-free, single
// mutex protected least-recently-used map, sized for the small-fragment
// workload this cache exists for (spec §5's "LRU cache... must be safe
// for concurrent read-mostly access").
type lruCache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type lruEntry struct {
	key   string
	value int
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = 4096
	}
	return &lruCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *lruCache) Get(_ context.Context, key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return 0, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *lruCache) Set(_ context.Context, key string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*lruEntry).value = n
		return
	}
	el := c.ll.PushFront(&lruEntry{key: key, value: n})
	c.items[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

// redisCache is an optional cross-process backend for multi-replica
// deployments sharing one trained.Config's cost model (SPEC_FULL.md's
// domain stack). Failures are treated as a cache miss, not an error:
// the caller always falls back to computing the count directly.
type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func newRedisCache(client *redis.Client, prefix string, ttl time.Duration) *redisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (int, bool) {
	s, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *redisCache) Set(ctx context.Context, key string, n int) {
	c.client.Set(ctx, c.prefix+key, strconv.Itoa(n), c.ttl)
}
