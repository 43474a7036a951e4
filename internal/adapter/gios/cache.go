package gios

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// RawTableSource is anything that can produce the raw workbook for a year.
type RawTableSource interface {
	FetchRawTable(ctx context.Context, year int) (domain.RawTable, error)
}

// CachedSource wraps a source with an in-memory LRU cache keyed by year.
// Cached tables are shared; callers must not modify their rows.
type CachedSource struct {
	inner   RawTableSource
	cache   *lru.Cache[int, domain.RawTable]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator holding up to size tables.
func NewCachedSource(inner RawTableSource, size int, metrics *observability.Metrics) (*CachedSource, error) {
	cache, err := lru.New[int, domain.RawTable](size)
	if err != nil {
		return nil, fmt.Errorf("archive cache: %w", err)
	}
	return &CachedSource{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedSource) FetchRawTable(ctx context.Context, year int) (domain.RawTable, error) {
	if raw, ok := c.cache.Get(year); ok {
		c.metrics.ArchiveCache.WithLabelValues("hit").Inc()
		return raw, nil
	}
	c.metrics.ArchiveCache.WithLabelValues("miss").Inc()

	raw, err := c.inner.FetchRawTable(ctx, year)
	if err != nil {
		return raw, err
	}
	c.cache.Add(year, raw)
	return raw, nil
}
