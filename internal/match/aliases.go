package match

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// aliasCache remembers which entity a mention resolved to, keyed by the
// normalized (lowercased, trimmed) mention string. Capacity is bounded with
// LRU eviction so long-lived engine instances cannot grow without limit.
//
// The underlying LRU is safe for concurrent use. Writes are idempotent (a
// mention always resolves to the same ID once correctly cached), so a racing
// duplicate insert is harmless.
type aliasCache struct {
	entries *lru.Cache[string, string]
}

// newAliasCache creates a cache holding at most size entries.
func newAliasCache(size int) *aliasCache {
	if size <= 0 {
		size = DefaultConfig().AliasCacheSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		// lru.New only fails on a non-positive size, which is guarded above.
		panic(err)
	}
	return &aliasCache{entries: entries}
}

// get returns the cached entity ID for a normalized mention. A hit also
// refreshes the entry's recency.
func (c *aliasCache) get(mention string) (string, bool) {
	return c.entries.Get(mention)
}

// put records a resolved mention. Only high-confidence resolutions should be
// cached; remembering uncertain guesses would pollute future lookups.
func (c *aliasCache) put(mention, id string) {
	c.entries.Add(mention, id)
}

// len returns the number of cached aliases.
func (c *aliasCache) len() int {
	return c.entries.Len()
}
