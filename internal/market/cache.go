package market

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// CachedSupplier wraps a supplier with a short-lived batch cache so that
// multiple engines polling the same universe inside one cycle share a
// single upstream request.
type CachedSupplier struct {
	inner Supplier
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	quotes  map[string]Quote
	fetched time.Time
}

// NewCachedSupplier wraps inner with a TTL cache keyed by the sorted
// symbol batch.
func NewCachedSupplier(inner Supplier, ttl time.Duration) *CachedSupplier {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &CachedSupplier{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedSupplier) Name() string { return c.inner.Name() }

// Quotes returns cached quotes when fresh, otherwise fetches from the
// wrapped supplier. A failed refresh never poisons the cache.
func (c *CachedSupplier) Quotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	key := batchKey(symbols)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.fetched) < c.ttl {
		quotes := cloneQuotes(entry.quotes)
		c.mu.Unlock()
		return quotes, nil
	}
	c.mu.Unlock()

	quotes, err := c.inner.Quotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{quotes: cloneQuotes(quotes), fetched: time.Now()}
	c.mu.Unlock()

	return quotes, nil
}

func batchKey(symbols []string) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func cloneQuotes(in map[string]Quote) map[string]Quote {
	out := make(map[string]Quote, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
