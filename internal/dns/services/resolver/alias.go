// Package resolver answers DNS questions from authoritative zone data:
// exact matches, CNAME chasing, referrals at zone cuts, wildcard synthesis
// and the NODATA / NXDOMAIN distinction.
package resolver

import (
	"errors"
	"fmt"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// Alias chase failures. Both surface to the client as SERVFAIL.
var (
	// ErrAliasDepthExceeded is returned when the number of CNAME indirections
	// encountered during a chase exceeds the configured maximum depth.
	ErrAliasDepthExceeded = errors.New("alias resolution max depth exceeded")
	// ErrAliasLoopDetected is returned when a loop is detected (a previously
	// visited owner name reappears in the CNAME chain).
	ErrAliasLoopDetected = errors.New("alias loop detected")
	// ErrAliasTargetInvalid indicates the CNAME target was missing / invalid.
	ErrAliasTargetInvalid = errors.New("alias target invalid")
)

// chaseState captures mutable progress while answering one question.
type chaseState struct {
	// query is the original client question.
	query domain.Question
	// chain accumulates the ordered CNAME hops followed so far.
	chain []domain.ResourceRecord
	// visited holds owner names already chased through.
	visited map[string]struct{}
	// depth counts the number of CNAME hops processed.
	depth int
}

func newChaseState(q domain.Question) *chaseState {
	return &chaseState{
		query:   q,
		visited: map[string]struct{}{},
	}
}

// follow appends cname to the chain and returns its target, enforcing the
// hop limit and rejecting targets already visited.
func (r *Resolver) follow(st *chaseState, cname domain.ResourceRecord) (string, error) {
	st.depth++
	if st.depth > r.maxChase {
		r.logger.Warn(map[string]any{
			"query":           st.query.Name,
			"alias_name":      cname.Name(),
			"alias_depth":     st.depth,
			"alias_chain_len": len(st.chain),
		}, "Alias depth exceeded")
		return "", ErrAliasDepthExceeded
	}

	st.visited[cname.Name()] = struct{}{}
	st.chain = append(st.chain, cname)

	target, ok := cname.Target()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAliasTargetInvalid, cname.Name())
	}
	if _, seen := st.visited[target]; seen {
		r.logger.Warn(map[string]any{
			"query":           st.query.Name,
			"alias_name":      cname.Name(),
			"alias_target":    target,
			"alias_depth":     st.depth,
			"alias_chain_len": len(st.chain),
		}, "Alias loop detected")
		return "", ErrAliasLoopDetected
	}
	return target, nil
}
