// Package dnscache is a bounded LRU cache of complete resolver responses.
package dnscache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/services/resolver"
)

// dnsCache is an in-memory cache using an LRU strategy to store responses.
// Zone data is only replaced by publishing a new catalog generation, which
// changes every key, so entries never need to expire on their own.
type dnsCache struct {
	lru *lru.Cache[string, domain.Response]
}

// New returns a new dnsCache instance of the given size using an LRU backing store.
func New(size int) (*dnsCache, error) {
	cache, err := lru.New[string, domain.Response](size)
	if err != nil {
		return nil, err
	}
	return &dnsCache{lru: cache}, nil
}

// Set stores resp under key, evicting the least recently used entry when full.
func (c *dnsCache) Set(key string, resp domain.Response) {
	c.lru.Add(key, resp)
}

// Get retrieves the response stored under key.
func (c *dnsCache) Get(key string) (domain.Response, bool) {
	return c.lru.Get(key)
}

// Delete removes the entry for the given key from the cache.
func (c *dnsCache) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry. Called after each zone publish so entries for
// superseded generations do not occupy capacity.
func (c *dnsCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cache entries currently stored in the cache.
func (c *dnsCache) Len() int {
	return c.lru.Len()
}

// Keys returns a slice of all current cache keys, oldest first.
func (c *dnsCache) Keys() []string {
	return c.lru.Keys()
}

var _ resolver.Cache = (*dnsCache)(nil)
