package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"roomshare/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 5 * time.Minute

// Cache is a read-through cache of query results keyed by Key.
//
// Concurrent fetches of one key share a single call to the loader. A load
// that was in flight when its key got invalidated still answers its callers
// but never populates the cache, and later callers start a fresh load.
type Cache struct {
	store Store
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group

	mu      sync.Mutex
	flights map[Key]map[*flight]struct{}
}

type flight struct {
	stale bool
}

func NewCache(store Store, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:   store,
		ttl:     ttl,
		log:     logger.OrNop(log),
		flights: make(map[Key]map[*flight]struct{}),
	}
}

// Fetch returns the cached value for key, or loads it with load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if data, ok, err := c.store.Get(ctx, key.String()); err != nil {
		c.log.WarnCtx(ctx, "query cache read failed", zap.String("key", key.String()), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.log.WarnCtx(ctx, "query cache entry undecodable", zap.String("key", key.String()))
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		f := c.begin(key)
		defer c.end(key, f)

		// The load is shared by every caller waiting on key.
		loadCtx := context.WithoutCancel(ctx)
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.commit(loadCtx, key, f, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached entry under each prefix and detaches loads
// in flight for them.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...Key) {
	c.mu.Lock()
	for key, set := range c.flights {
		for _, prefix := range prefixes {
			if key.HasPrefix(prefix) {
				for f := range set {
					f.stale = true
				}
				c.group.Forget(key.String())
				break
			}
		}
	}
	c.mu.Unlock()

	for _, prefix := range prefixes {
		if err := c.store.DeletePrefix(ctx, prefix.String()); err != nil {
			c.log.WarnCtx(ctx, "query cache invalidation failed", zap.String("prefix", prefix.String()), zap.Error(err))
		}
	}
}

// Apply invalidates everything m makes stale.
func (c *Cache) Apply(ctx context.Context, m Mutation, args Args) {
	c.Invalidate(ctx, Invalidates(m, args)...)
}

func (c *Cache) begin(key Key) *flight {
	f := &flight{}
	c.mu.Lock()
	if c.flights[key] == nil {
		c.flights[key] = make(map[*flight]struct{})
	}
	c.flights[key][f] = struct{}{}
	c.mu.Unlock()
	return f
}

func (c *Cache) end(key Key, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.flights[key]; ok {
		delete(set, f)
		if len(set) == 0 {
			delete(c.flights, key)
		}
	}
}

func (c *Cache) commit(ctx context.Context, key Key, f *flight, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.WarnCtx(ctx, "query result not cacheable", zap.String("key", key.String()), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f.stale {
		return
	}
	if err := c.store.Set(ctx, key.String(), data, c.ttl); err != nil {
		c.log.WarnCtx(ctx, "query cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}
