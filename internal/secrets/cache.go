package secrets

import (
	"context"
	"sync"
	"time"
)

// defaultCacheTTL bounds how long a resolved secret is reused before the
// backing store is asked again.
const defaultCacheTTL = 15 * time.Minute

// Cached wraps a Provider with a TTL cache so repeated lookups of the
// same secret within one scheduling window hit the store once.
type Cached struct {
	inner Provider
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	payload Payload
	fetched time.Time
}

// NewCached wraps inner with a TTL cache. ttl <= 0 selects the default.
func NewCached(inner Provider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cached{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cachedSecret),
	}
}

// GetSecret returns the cached payload when fresh, otherwise fetches and
// caches it.
func (c *Cached) GetSecret(ctx context.Context, secretID string) (Payload, error) {
	c.mu.RLock()
	if entry, ok := c.cache[secretID]; ok && time.Since(entry.fetched) < c.ttl {
		c.mu.RUnlock()
		return entry.payload, nil
	}
	c.mu.RUnlock()

	payload, err := c.inner.GetSecret(ctx, secretID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[secretID] = cachedSecret{payload: payload, fetched: time.Now()}
	c.mu.Unlock()
	return payload, nil
}
