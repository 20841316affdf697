package resolver

import (
	"slices"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
)

type outcome uint8

const (
	outcomeAnswer outcome = iota
	outcomeAlias
	outcomeReferral
	outcomeNoData
	outcomeNXDomain
)

// lookupResult is the answer for a single owner name, before CNAME chasing.
type lookupResult struct {
	outcome outcome
	// records holds the answer RRset, the CNAME to follow, or the referral NS set.
	records []domain.ResourceRecord
}

// answer resolves q inside idx, following CNAMEs that stay in the zone.
func (r *Resolver) answer(idx *zoneindex.Index, q domain.Question) (domain.Response, error) {
	st := newChaseState(q)
	name := q.Name
	for {
		res := lookup(idx, name, q.Type)
		switch res.outcome {
		case outcomeAnswer:
			return domain.Response{
				Status:        domain.StatusOK,
				Authoritative: true,
				Answers:       slices.Concat(st.chain, res.records),
				Additional:    additional(idx, res.records),
			}, nil

		case outcomeAlias:
			target, err := r.follow(st, res.records[0])
			if err != nil {
				return domain.Response{}, err
			}
			if !idx.Contains(target) {
				return domain.Response{
					Status:        domain.StatusOK,
					Authoritative: true,
					Answers:       st.chain,
				}, nil
			}
			name = target

		case outcomeReferral:
			return domain.Response{
				Status:        domain.StatusOK,
				Authoritative: len(st.chain) > 0,
				Answers:       st.chain,
				Authority:     res.records,
				Additional:    additional(idx, res.records),
			}, nil

		default:
			soa, ok := idx.SOA()
			if !ok {
				return domain.Response{}, &domain.ResolverFault{Zone: idx.Origin(), Name: name, Reason: "zone index has no SOA"}
			}
			status := domain.StatusNODATA
			if res.outcome == outcomeNXDomain {
				status = domain.StatusNXDOMAIN
			}
			return domain.Response{
				Status:        status,
				Authoritative: true,
				Answers:       st.chain,
				Authority:     []domain.ResourceRecord{soa},
			}, nil
		}
	}
}

// lookup applies the resolution rules for one owner name; the first rule
// that matches wins.
func lookup(idx *zoneindex.Index, name string, qtype domain.RRType) lookupResult {
	owner := idx.Owner(name)

	// exact match
	if qtype == domain.RRTypeANY {
		if len(owner) > 0 {
			return lookupResult{outcome: outcomeAnswer, records: owner}
		}
	} else if rrs := idx.Lookup(name, qtype); len(rrs) > 0 {
		return lookupResult{outcome: outcomeAnswer, records: rrs}
	}

	// alias
	if qtype != domain.RRTypeCNAME {
		if cname := idx.Lookup(name, domain.RRTypeCNAME); len(cname) > 0 {
			return lookupResult{outcome: outcomeAlias, records: cname[:1]}
		}
	}

	// delegation: a cut above a name without data, or at the name itself
	if cut, ns, ok := idx.Delegation(name); ok && (len(owner) == 0 || cut == name) {
		return lookupResult{outcome: outcomeReferral, records: ns}
	}

	if idx.NameExists(name) {
		return lookupResult{outcome: outcomeNoData}
	}

	// wildcard at the closest encloser
	suffix := idx.ClosestEncloser(name)
	if !idx.HasWildcard(suffix) {
		return lookupResult{outcome: outcomeNXDomain}
	}
	var src []domain.ResourceRecord
	if qtype == domain.RRTypeANY {
		src = idx.WildcardOwner(suffix)
	} else {
		src = idx.Wildcard(suffix, qtype)
	}
	if len(src) > 0 {
		return lookupResult{outcome: outcomeAnswer, records: synthesize(src, name)}
	}
	if qtype != domain.RRTypeCNAME {
		if cname := idx.Wildcard(suffix, domain.RRTypeCNAME); len(cname) > 0 {
			return lookupResult{outcome: outcomeAlias, records: synthesize(cname[:1], name)}
		}
	}
	return lookupResult{outcome: outcomeNoData}
}

// synthesize copies wildcard records with the queried name as owner.
func synthesize(src []domain.ResourceRecord, name string) []domain.ResourceRecord {
	out := make([]domain.ResourceRecord, len(src))
	for i, rr := range src {
		out[i] = rr.WithName(name)
	}
	return out
}

// additional returns in-zone address records for the targets of NS, MX and
// SRV records, deduplicated by target.
func additional(idx *zoneindex.Index, rrs []domain.ResourceRecord) []domain.ResourceRecord {
	var (
		out  []domain.ResourceRecord
		seen map[string]struct{}
	)
	for _, rr := range rrs {
		switch rr.Type() {
		case domain.RRTypeNS, domain.RRTypeMX, domain.RRTypeSRV:
		default:
			continue
		}
		target, ok := rr.Target()
		if !ok || !idx.Contains(target) {
			continue
		}
		if seen == nil {
			seen = map[string]struct{}{}
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, idx.Lookup(target, domain.RRTypeA)...)
		out = append(out, idx.Lookup(target, domain.RRTypeAAAA)...)
	}
	return out
}
