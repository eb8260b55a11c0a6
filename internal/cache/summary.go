package cache

import (
	"strings"
	"time"

	"ahorrapp/internal/query"
)

const keySep = "\x1f"

// SummaryCache memoizes per-user summaries keyed by the view options
// that produced them.
type SummaryCache struct {
	store *Store[query.Summary]
}

// NewSummaryCache creates a SummaryCache with the given capacity and TTL.
func NewSummaryCache(maxSize int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{store: NewStore[query.Summary](maxSize, ttl)}
}

// Get returns the cached summary for a user and view, if any.
func (c *SummaryCache) Get(uid string, opts query.Options) (query.Summary, bool) {
	return c.store.Get(summaryKey(uid, opts))
}

// Set caches the summary for a user and view.
func (c *SummaryCache) Set(uid string, opts query.Options, s query.Summary) {
	c.store.Set(summaryKey(uid, opts), s)
}

// Invalidate drops every cached summary for the user. Called whenever
// one of their transactions changes.
func (c *SummaryCache) Invalidate(uid string) int {
	return c.store.DeletePrefix(uid + keySep)
}

// Sweep removes expired entries and returns how many were removed.
func (c *SummaryCache) Sweep() int {
	return c.store.Sweep()
}

// Len returns the number of cached summaries.
func (c *SummaryCache) Len() int {
	return c.store.Len()
}

func summaryKey(uid string, opts query.Options) string {
	return strings.Join([]string{uid, string(opts.Filter), opts.Search, string(opts.Sort)}, keySep)
}
