package zonemgr

import "github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"

// IndexPublisher swaps zone indexes into the set served to resolvers.
// Every call must be atomic for readers.
type IndexPublisher interface {
	PutZone(idx *zoneindex.Index)
	Replace(idxs ...*zoneindex.Index)
	Clear()
	Current() *zoneindex.Catalog
}

// Purger drops cached responses after the served zones change.
type Purger interface {
	Purge()
}
