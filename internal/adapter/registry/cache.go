package registry

import (
	"container/list"
	"context"
	"sync"

	"github.com/heatwise/wetbulb-etl/internal/domain"
	"github.com/heatwise/wetbulb-etl/internal/observability"
)

// CachingDirectory wraps a StationDirectory with an LRU cache. Station
// metadata changes rarely, so successful lookups are cached for the process
// lifetime; failures are not cached so a recovered registry is retried.
type CachingDirectory struct {
	inner   domain.StationDirectory
	metrics *observability.Metrics

	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	stationID string
	info      domain.StationInfo
}

// NewCachingDirectory wraps inner with an LRU cache of at most maxSize entries.
func NewCachingDirectory(inner domain.StationDirectory, maxSize int, metrics *observability.Metrics) *CachingDirectory {
	return &CachingDirectory{
		inner:   inner,
		metrics: metrics,
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Lookup returns cached metadata when available, otherwise delegates to the
// wrapped directory and caches the result on success.
func (c *CachingDirectory) Lookup(ctx context.Context, stationID string) (domain.StationInfo, error) {
	if info, ok := c.get(stationID); ok {
		c.metrics.RegistryCache.WithLabelValues("hit").Inc()
		return info, nil
	}
	c.metrics.RegistryCache.WithLabelValues("miss").Inc()

	info, err := c.inner.Lookup(ctx, stationID)
	if err != nil {
		return domain.StationInfo{}, err
	}

	c.put(stationID, info)
	return info, nil
}

func (c *CachingDirectory) get(stationID string) (domain.StationInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[stationID]
	if !ok {
		return domain.StationInfo{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).info, true
}

func (c *CachingDirectory) put(stationID string, info domain.StationInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[stationID]; ok {
		elem.Value.(*cacheEntry).info = info
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{stationID: stationID, info: info})
	c.entries[stationID] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).stationID)
	}
}
