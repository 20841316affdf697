package zoneindex

import (
	"maps"
	"slices"

	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
)

// Catalog is an immutable set of zone Indexes keyed by origin. Every
// modification returns a new Catalog with the next generation number, so a
// published Catalog can be read without locks.
type Catalog struct {
	generation uint64
	zones      map[string]*Index
}

// NewCatalog returns an empty Catalog at generation 0.
func NewCatalog() *Catalog {
	return &Catalog{zones: map[string]*Index{}}
}

// Generation increases by one with every derived Catalog.
func (c *Catalog) Generation() uint64 { return c.generation }

// Len returns the number of zones.
func (c *Catalog) Len() int { return len(c.zones) }

// Get returns the Index for an exact origin.
func (c *Catalog) Get(origin string) (*Index, bool) {
	idx, ok := c.zones[utils.CanonicalDNSName(origin)]
	return idx, ok
}

// Find returns the Index of the most specific zone enclosing name, walking
// from name towards the root.
func (c *Catalog) Find(name string) (*Index, bool) {
	name = utils.CanonicalDNSName(name)
	for {
		if idx, ok := c.zones[name]; ok {
			return idx, true
		}
		parent, ok := utils.ParentName(name)
		if !ok {
			return nil, false
		}
		name = parent
	}
}

// Origins returns the zone origins in sorted order.
func (c *Catalog) Origins() []string {
	return slices.Sorted(maps.Keys(c.zones))
}

// Records returns the total number of records across all zones.
func (c *Catalog) Records() int {
	n := 0
	for _, idx := range c.zones {
		n += idx.Len()
	}
	return n
}

// With returns a Catalog holding c's zones plus idxs, replacing any zone
// with the same origin.
func (c *Catalog) With(idxs ...*Index) *Catalog {
	next := c.derive()
	for _, idx := range idxs {
		next.zones[idx.Origin()] = idx
	}
	return next
}

// Replace returns a Catalog holding exactly idxs, continuing c's generation.
func (c *Catalog) Replace(idxs ...*Index) *Catalog {
	next := &Catalog{generation: c.generation + 1, zones: make(map[string]*Index, len(idxs))}
	for _, idx := range idxs {
		next.zones[idx.Origin()] = idx
	}
	return next
}

func (c *Catalog) derive() *Catalog {
	zones := make(map[string]*Index, len(c.zones)+1)
	maps.Copy(zones, c.zones)
	return &Catalog{generation: c.generation + 1, zones: zones}
}
