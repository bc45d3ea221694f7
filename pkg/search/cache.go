package search

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes results per (mode, query) for a short TTL.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

var _ Provider = &CachedProvider{}

// WithCache wraps next in a CachedProvider. A non-positive ttl disables
// caching, since go-cache treats zero as "never expire".
func WithCache(next Provider, ttl time.Duration) Provider {
	if ttl <= 0 {
		return next
	}
	return NewCachedProvider(next, ttl)
}

func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Search(ctx context.Context, query string, mode Mode) ([]Result, error) {
	key := string(mode) + "|" + query
	if v, ok := c.cache.Get(key); ok {
		return v.([]Result), nil
	}

	results, err := c.next.Search(ctx, query, mode)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, results)
	return results, nil
}
