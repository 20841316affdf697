// Package zoneindex builds the read-only lookup structures the resolver
// answers from. An Index covers one zone; a Catalog is an immutable set of
// Indexes published as a unit.
package zoneindex

import (
	"time"

	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

type rrKey struct {
	name   string
	rrtype domain.RRType
}

// Index is the lookup structure over one zone version. It is never mutated
// after Build returns, so any number of goroutines may read it. Slices
// returned by its methods are shared and must not be modified.
type Index struct {
	origin  string
	class   domain.RRClass
	serial  uint32
	builtAt time.Time
	soa     domain.ResourceRecord
	hasSOA  bool
	size    int

	rrsets map[rrKey][]domain.ResourceRecord
	owners map[string][]domain.ResourceRecord
	// nodes holds every owner plus the empty non-terminals between owners and the origin.
	nodes map[string]struct{}
	// wildcards and wildcardOwners are keyed by the suffix a wildcard covers.
	wildcards      map[rrKey][]domain.ResourceRecord
	wildcardOwners map[string][]domain.ResourceRecord
	// cuts holds NS sets owned below the apex.
	cuts map[string][]domain.ResourceRecord
}

// Build indexes a zone. Records at one (name, type) keep zone order.
func Build(zone domain.Zone, builtAt time.Time) *Index {
	idx := &Index{
		origin:         zone.Origin(),
		class:          zone.Class(),
		serial:         zone.Serial(),
		builtAt:        builtAt,
		rrsets:         make(map[rrKey][]domain.ResourceRecord),
		owners:         make(map[string][]domain.ResourceRecord),
		nodes:          make(map[string]struct{}),
		wildcards:      make(map[rrKey][]domain.ResourceRecord),
		wildcardOwners: make(map[string][]domain.ResourceRecord),
		cuts:           make(map[string][]domain.ResourceRecord),
	}
	if !zone.IsZero() {
		idx.nodes[idx.origin] = struct{}{}
	}

	for _, rr := range zone.Records() {
		name := rr.Name()
		k := rrKey{name, rr.Type()}
		idx.rrsets[k] = append(idx.rrsets[k], rr)
		idx.owners[name] = append(idx.owners[name], rr)
		idx.addNode(name)
		idx.size++

		if suffix, ok := utils.WildcardSuffix(name); ok {
			wk := rrKey{suffix, rr.Type()}
			idx.wildcards[wk] = append(idx.wildcards[wk], rr)
			idx.wildcardOwners[suffix] = append(idx.wildcardOwners[suffix], rr)
		}

		switch {
		case rr.Type() == domain.RRTypeSOA && name == idx.origin && !idx.hasSOA:
			idx.soa, idx.hasSOA = rr, true
		case rr.Type() == domain.RRTypeNS && name != idx.origin:
			idx.cuts[name] = append(idx.cuts[name], rr)
		}
	}
	return idx
}

// addNode marks name and every ancestor up to the origin as existing.
func (idx *Index) addNode(name string) {
	for name != idx.origin {
		if _, ok := idx.nodes[name]; ok {
			return
		}
		idx.nodes[name] = struct{}{}
		parent, ok := utils.ParentName(name)
		if !ok {
			return
		}
		name = parent
	}
}

func (idx *Index) Origin() string        { return idx.origin }
func (idx *Index) Class() domain.RRClass { return idx.class }
func (idx *Index) Serial() uint32        { return idx.serial }
func (idx *Index) BuiltAt() time.Time    { return idx.builtAt }
func (idx *Index) Len() int              { return idx.size }

// Contains reports whether name is the origin or below it.
func (idx *Index) Contains(name string) bool { return utils.IsSubdomain(name, idx.origin) }

// SOA returns the zone's SOA record. ok is false only for an Index built
// from data that skipped zone validation.
func (idx *Index) SOA() (domain.ResourceRecord, bool) {
	return idx.soa, idx.hasSOA
}

// Lookup returns the records at (name, rrtype) in zone order.
func (idx *Index) Lookup(name string, rrtype domain.RRType) []domain.ResourceRecord {
	return idx.rrsets[rrKey{name, rrtype}]
}

// Owner returns every record owned by name, in zone order.
func (idx *Index) Owner(name string) []domain.ResourceRecord {
	return idx.owners[name]
}

// NameExists reports whether name owns records or is an empty non-terminal.
func (idx *Index) NameExists(name string) bool {
	_, ok := idx.nodes[name]
	return ok
}

// ClosestEncloser returns the deepest existing ancestor of name, which is
// at worst the origin. name must be within the zone.
func (idx *Index) ClosestEncloser(name string) string {
	for name != idx.origin {
		parent, ok := utils.ParentName(name)
		if !ok {
			break
		}
		name = parent
		if idx.NameExists(name) {
			return name
		}
	}
	return idx.origin
}

// Wildcard returns the records of type rrtype owned by "*.<suffix>".
func (idx *Index) Wildcard(suffix string, rrtype domain.RRType) []domain.ResourceRecord {
	return idx.wildcards[rrKey{suffix, rrtype}]
}

// WildcardOwner returns every record owned by "*.<suffix>".
func (idx *Index) WildcardOwner(suffix string) []domain.ResourceRecord {
	return idx.wildcardOwners[suffix]
}

// HasWildcard reports whether "*.<suffix>" owns any record.
func (idx *Index) HasWildcard(suffix string) bool {
	return len(idx.wildcardOwners[suffix]) > 0
}

// Delegation finds the zone cut at or above name and below the apex.
// When cuts are nested the one closest to the apex wins, since data below
// it is not authoritative.
func (idx *Index) Delegation(name string) (cut string, ns []domain.ResourceRecord, ok bool) {
	for name != idx.origin && name != "" {
		if set, found := idx.cuts[name]; found {
			cut, ns, ok = name, set, true
		}
		name, _ = utils.ParentName(name)
	}
	return cut, ns, ok
}

// Cuts returns the number of delegation points in the zone.
func (idx *Index) Cuts() int { return len(idx.cuts) }
