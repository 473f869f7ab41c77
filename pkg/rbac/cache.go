package rbac

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tillware/posgate/pkg/observability"
)

// DefaultCacheSize bounds the decision cache. The vocabulary is small, so
// this is generous headroom even with policy-file extensions.
const DefaultCacheSize = 256

// DefaultFallbackTTL is how long a degraded-mode decision may be served from
// cache before the authority is retried.
const DefaultFallbackTTL = 30 * time.Second

type cacheEntry struct {
	allowed   bool
	source    Source
	expiresAt time.Time // zero for entries that live until Clear
}

// Cache memoizes permission decisions for one authenticated session. Entries
// sourced from the remote authority or the effective set live until Clear;
// fallback entries expire after the configured TTL. The session store is
// responsible for calling Clear on logout, identity swap, and explicit
// permission refresh.
type Cache struct {
	entries     *lru.Cache[Permission, cacheEntry]
	fallbackTTL time.Duration
	clock       func() time.Time
	metrics     *observability.Metrics
}

// NewCache creates a decision cache. Non-positive size and TTL fall back to
// the defaults; a nil metrics gets a throwaway registry.
func NewCache(size int, fallbackTTL time.Duration, metrics *observability.Metrics) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultFallbackTTL
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	// lru.New only errors on a non-positive size, which is guarded above.
	entries, _ := lru.New[Permission, cacheEntry](size)
	return &Cache{
		entries:     entries,
		fallbackTTL: fallbackTTL,
		clock:       time.Now,
		metrics:     metrics,
	}
}

// Get returns the cached outcome for p. Expired fallback entries read as
// absent and are evicted.
func (c *Cache) Get(p Permission) (Outcome, bool) {
	entry, ok := c.entries.Get(p)
	if !ok {
		c.metrics.CacheMissesTotal.Inc()
		return Outcome{}, false
	}
	if !entry.expiresAt.IsZero() && !c.clock().Before(entry.expiresAt) {
		c.entries.Remove(p)
		c.metrics.CacheMissesTotal.Inc()
		return Outcome{}, false
	}
	c.metrics.CacheHitsTotal.Inc()
	return Outcome{Allowed: entry.allowed, Source: entry.source}, true
}

// Set stores a decision for p, recording the source that produced it.
// Fallback-sourced decisions get the short TTL.
func (c *Cache) Set(p Permission, allowed bool, source Source) {
	entry := cacheEntry{allowed: allowed, source: source}
	if source == SourceFallback {
		entry.expiresAt = c.clock().Add(c.fallbackTTL)
	}
	c.entries.Add(p, entry)
}

// Clear drops every cached decision
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Len returns the number of live entries, including any not-yet-evicted
// expired fallback entries
func (c *Cache) Len() int {
	return c.entries.Len()
}
