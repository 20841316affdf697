// Package zonecache publishes the set of zone indexes the resolver answers
// from. Readers load the current catalog with a single atomic operation and
// never block; writers are serialized and swap in a new catalog.
package zonecache

import (
	"sync"
	"sync/atomic"

	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
	"github.com/awesome-nfv/shuke/internal/dns/services/resolver"
)

// ZoneCache is an in-memory implementation of resolver.ZoneCache.
type ZoneCache struct {
	// mu serializes writers so read-modify-swap sequences do not lose updates.
	mu      sync.Mutex
	current atomic.Pointer[zoneindex.Catalog]
}

// New creates a ZoneCache publishing an empty catalog.
func New() *ZoneCache {
	zc := &ZoneCache{}
	zc.current.Store(zoneindex.NewCatalog())
	return zc
}

// Current returns the published catalog. The result is immutable.
func (zc *ZoneCache) Current() *zoneindex.Catalog {
	return zc.current.Load()
}

// PutZone publishes idx, replacing any zone with the same origin.
func (zc *ZoneCache) PutZone(idx *zoneindex.Index) {
	zc.mu.Lock()
	defer zc.mu.Unlock()
	zc.current.Store(zc.current.Load().With(idx))
}

// Replace publishes exactly idxs in one swap, dropping every other zone.
func (zc *ZoneCache) Replace(idxs ...*zoneindex.Index) {
	zc.mu.Lock()
	defer zc.mu.Unlock()
	zc.current.Store(zc.current.Load().Replace(idxs...))
}

// Clear publishes an empty catalog.
func (zc *ZoneCache) Clear() {
	zc.Replace()
}

// Zones returns the origins currently published, sorted.
func (zc *ZoneCache) Zones() []string {
	return zc.Current().Origins()
}

// Count returns the total number of records across all zones.
func (zc *ZoneCache) Count() int {
	return zc.Current().Records()
}

// Ensure ZoneCache implements resolver.ZoneCache at compile time
var _ resolver.ZoneCache = (*ZoneCache)(nil)
