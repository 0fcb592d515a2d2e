package csvfile

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
	"golang.org/x/sync/singleflight"
)

// CachedLoader memoizes a DatasetLoader by file path. Entries live until
// Invalidate or Clear; the file's modification time is never consulted.
// Concurrent first loads of one path share a single read.
type CachedLoader struct {
	inner   domain.DatasetLoader
	metrics *observability.Metrics

	mu      sync.RWMutex
	entries map[string]domain.Dataset
	gen     uint64 // bumped by Invalidate and Clear
	group   singleflight.Group
}

// NewCachedLoader creates a cache decorator around a loader.
func NewCachedLoader(inner domain.DatasetLoader, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		metrics: metrics,
		entries: make(map[string]domain.Dataset),
	}
}

// Load returns the cached dataset for path, reading it on first use. Failed
// loads are not cached so the next call retries. A read shared by concurrent
// callers is not cancelled by any one of them; each caller stops waiting when
// its own ctx is done.
func (c *CachedLoader) Load(ctx context.Context, path string) (domain.Dataset, error) {
	key := filepath.Clean(path)
	if ds, ok := c.get(key); ok {
		c.metrics.LoadCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	c.metrics.LoadCache.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		if ds, ok := c.get(key); ok {
			return ds, nil
		}
		gen := c.generation()
		ds, err := c.inner.Load(context.WithoutCancel(ctx), path)
		c.metrics.Loads.WithLabelValues(loadOutcome(err)).Inc()
		if err != nil {
			return domain.Dataset{}, err
		}
		c.putIfCurrent(key, ds, gen)
		c.metrics.RowsLoaded.Set(float64(ds.Len()))
		for field, n := range ds.Skips {
			c.metrics.CoercionSkips.WithLabelValues(field).Add(float64(n))
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return domain.Dataset{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Dataset{}, res.Err
		}
		return res.Val.(domain.Dataset), nil
	}
}

// Invalidate drops the cached dataset for path.
func (c *CachedLoader) Invalidate(path string) {
	key := filepath.Clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.entries, key)
	c.group.Forget(key)
}

// Clear drops every cached dataset.
func (c *CachedLoader) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[string]domain.Dataset)
}

// Len returns the number of cached paths.
func (c *CachedLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedLoader) get(key string) (domain.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	return ds, ok
}

func (c *CachedLoader) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// putIfCurrent stores ds unless the cache was invalidated after the read began.
func (c *CachedLoader) putIfCurrent(key string, ds domain.Dataset, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.entries[key] = ds
}

func loadOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, domain.ErrParse):
		return "parse_error"
	default:
		return "error"
	}
}
