package pipeline

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/iloc-catalog-etl/internal/observability"
	gocache "github.com/patrickmn/go-cache"
)

// CachedSelector wraps a StationSelector with an in-memory cache keyed by
// origin ID and percentage. A cache must not outlive the inventory its
// selector reads from.
type CachedSelector struct {
	inner   domain.StationSelector
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedSelector creates a cache decorator around a selector. Entries never
// expire; the cache lives for a single run.
func NewCachedSelector(inner domain.StationSelector, metrics *observability.Metrics) *CachedSelector {
	return &CachedSelector{
		inner:   inner,
		cache:   gocache.New(gocache.NoExpiration, 0),
		metrics: metrics,
	}
}

// Select returns the cached selection for the origin, computing it on a miss.
// Errors are not cached, and origins without an ID always go to the inner
// selector.
func (c *CachedSelector) Select(origin domain.Origin, maxPct float64) (domain.Selection, error) {
	if origin.ID == "" {
		return c.inner.Select(origin, maxPct)
	}

	key := fmt.Sprintf("%s|%s", origin.ID, strconv.FormatFloat(maxPct, 'g', -1, 64))
	if v, ok := c.cache.Get(key); ok {
		c.metrics.SelectionCache.WithLabelValues("hit").Inc()
		return cloneSelection(v.(domain.Selection)), nil
	}
	c.metrics.SelectionCache.WithLabelValues("miss").Inc()

	sel, err := c.inner.Select(origin, maxPct)
	if err != nil {
		return sel, err
	}
	c.cache.Set(key, cloneSelection(sel), gocache.DefaultExpiration)
	return sel, nil
}

// Len reports the number of cached selections.
func (c *CachedSelector) Len() int {
	return c.cache.ItemCount()
}

func cloneSelection(sel domain.Selection) domain.Selection {
	sel.Stations = slices.Clone(sel.Stations)
	return sel
}
