package openmeteo

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedProvider wraps a WindProvider with an in-memory LRU cache. Entries are
// keyed by coordinate rounded to 0.01° and the current UTC hour, so a cached
// sample never outlives the hour it was observed in.
type CachedProvider struct {
	inner   domain.WindProvider
	cache   *lruCache
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewCachedProvider creates a cache decorator around a wind provider.
func NewCachedProvider(inner domain.WindProvider, maxEntries int, metrics *observability.Metrics, clock clockwork.Clock) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
		clock:   clock,
	}
}

func (c *CachedProvider) Wind(ctx context.Context, lat, lon float64) (domain.WindSample, error) {
	hour := c.clock.Now().UTC().Truncate(time.Hour).Unix()
	key := fmt.Sprintf("%.2f,%.2f@%d", lat, lon, hour)
	if sample, ok := c.cache.get(key); ok {
		c.metrics.WindCache.WithLabelValues("hit").Inc()
		return sample, nil
	}
	c.metrics.WindCache.WithLabelValues("miss").Inc()

	sample, err := c.inner.Wind(ctx, lat, lon)
	if err != nil {
		return sample, err
	}
	// Empty samples are not cached.
	if !sample.IsEmpty() {
		c.cache.put(key, sample)
	}
	return sample, nil
}

// lruCache is a bounded, mutex-guarded map of wind samples. Front of order is
// the most recently used key.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	items      map[string]*list.Element
}

type cacheItem struct {
	key    string
	sample domain.WindSample
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.WindSample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return domain.WindSample{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).sample, true
}

func (c *lruCache) put(key string, sample domain.WindSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem).sample = sample
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, sample: sample})

	for c.order.Len() > max(c.maxEntries, 0) {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
