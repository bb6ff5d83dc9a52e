package tool

import (
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	result  string
	expires time.Time
}

// resultCache is a TTL cache of successful tool results keyed by
// (tool name, normalized query). Failures are never cached.
type resultCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: map[string]cacheEntry{},
	}
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (c *resultCache) key(tool, query string) string {
	return tool + "\x00" + normalizeQuery(query)
}

func (c *resultCache) Get(tool, query string, now time.Time) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[c.key(tool, query)]
	if !ok {
		return "", false
	}
	if now.After(entry.expires) {
		delete(c.entries, c.key(tool, query))
		return "", false
	}
	return entry.result, true
}

func (c *resultCache) Put(tool, query, result string, now time.Time) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(tool, query)] = cacheEntry{
		result:  result,
		expires: now.Add(c.ttl),
	}
}
