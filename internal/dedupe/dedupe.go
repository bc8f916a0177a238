// Package dedupe coalesces duplicate in-flight requests and caches their
// results for a short window.
//
// It replaces the global in-flight boolean the portal previously used to
// guard the galleries fetch: concurrent identical requests now share one
// upstream call and every caller receives the real result, keyed by request
// signature instead of blocking unrelated callers.
package dedupe

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/rjmoggach/litigation-support-sub001/internal/metrics"
)

type entry struct {
	val     any
	expires time.Time
}

// Cache deduplicates calls by key. In-flight calls are shared via
// singleflight; completed results stay available until the TTL lapses.
// Only successful results are cached.
type Cache struct {
	group   singleflight.Group
	clock   clockwork.Clock
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
}

// New creates a cache with the given result TTL.
func New(ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Do returns the cached result for key when fresh, joins an in-flight call
// for the same key when one exists, and otherwise invokes fn. The bool
// reports whether the result was shared (cache hit or joined flight).
func (c *Cache) Do(key string, fn func() (any, error)) (any, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.clock.Now().Before(e.expires) {
			c.mu.Unlock()
			metrics.DedupedRequests.WithLabelValues("cached").Inc()
			return e.val, true, nil
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	val, err, shared := c.group.Do(key, func() (any, error) {
		val, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry{val: val, expires: c.clock.Now().Add(c.ttl)}
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return nil, shared, err
	}

	if shared {
		metrics.DedupedRequests.WithLabelValues("shared").Inc()
	} else {
		metrics.DedupedRequests.WithLabelValues("fetched").Inc()
	}
	return val, shared, nil
}

// Forget drops the cached result for key, forcing the next Do to fetch.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Key builds a request signature from its parts.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}
