package resolver

import (
	"context"
	"net"
	"strconv"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
)

// DefaultMaxCNAMEChase bounds the CNAME hops followed for one question.
const DefaultMaxCNAMEChase = 8

// Resolver answers questions from the zones published by a ZoneCache.
// It never mutates zone data; every answer is computed against the single
// catalog snapshot loaded when the question arrives.
type Resolver struct {
	cache    Cache
	clock    clock.Clock
	logger   log.Logger
	maxChase int
	zones    ZoneCache
}

type ResolverOptions struct {
	// Cache is optional; nil disables response caching.
	Cache  Cache
	Clock  clock.Clock
	Logger log.Logger
	// MaxCNAMEChase defaults to DefaultMaxCNAMEChase when <= 0.
	MaxCNAMEChase int
	ZoneCache     ZoneCache
}

func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		cache:    opts.Cache,
		clock:    opts.Clock,
		logger:   opts.Logger,
		maxChase: opts.MaxCNAMEChase,
		zones:    opts.ZoneCache,
	}
	if r.clock == nil {
		r.clock = clock.RealClock{}
	}
	if r.logger == nil {
		r.logger = log.NewNoopLogger()
	}
	if r.maxChase <= 0 {
		r.maxChase = DefaultMaxCNAMEChase
	}
	return r
}

// Resolve answers (name, rrtype, class) against the current catalog.
// Outcomes such as NXDOMAIN or NODATA are statuses, never errors.
func (r *Resolver) Resolve(name string, rrtype domain.RRType, class domain.RRClass) domain.Response {
	q := domain.Question{Name: utils.CanonicalDNSName(name), Type: rrtype, Class: class}
	return r.resolve(r.zones.Current(), q)
}

// HandleQuery is the transport-facing entry point. It validates the
// question, consults the response cache and resolves on a miss.
func (r *Resolver) HandleQuery(ctx context.Context, q domain.Question, clientAddr net.Addr) domain.Response {
	start := r.clock.Now()
	fields := map[string]any{
		"id":    q.ID,
		"name":  q.Name,
		"type":  q.Type.String(),
		"class": q.Class.String(),
	}
	if clientAddr != nil {
		fields["client"] = clientAddr.String()
	}

	if err := q.Validate(); err != nil {
		fields["error"] = err.Error()
		r.logger.Debug(fields, "Rejected invalid question")
		return domain.NewErrorResponse(domain.StatusREFUSED)
	}
	if err := ctx.Err(); err != nil {
		fields["error"] = err.Error()
		r.logger.Debug(fields, "Query context done before resolution")
		return domain.NewErrorResponse(domain.StatusSERVFAIL)
	}

	catalog := r.zones.Current()
	key := cacheKey(catalog, q)
	if r.cache != nil {
		if resp, ok := r.cache.Get(key); ok {
			fields["status"] = resp.Status.String()
			r.logger.Debug(fields, "Answered from response cache")
			return resp
		}
	}

	resp := r.resolve(catalog, q)
	if r.cache != nil && resp.Status != domain.StatusSERVFAIL {
		r.cache.Set(key, resp)
	}

	fields["status"] = resp.Status.String()
	fields["answers"] = resp.AnswerCount()
	fields["referral"] = resp.IsReferral()
	fields["duration"] = r.clock.Now().Sub(start).String()
	r.logger.Debug(fields, "Query answered")
	return resp
}

func cacheKey(catalog *zoneindex.Catalog, q domain.Question) string {
	var gen uint64
	if catalog != nil {
		gen = catalog.Generation()
	}
	return strconv.FormatUint(gen, 10) + "|" + q.CacheKey()
}

// resolve selects the enclosing zone and answers from it. A panic or an
// internal fault fails this question only.
func (r *Resolver) resolve(catalog *zoneindex.Catalog, q domain.Question) (resp domain.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(map[string]any{
				"name":  q.Name,
				"type":  q.Type.String(),
				"panic": rec,
			}, "Recovered panic while resolving")
			resp = domain.NewErrorResponse(domain.StatusSERVFAIL)
		}
	}()

	if catalog == nil {
		return domain.NewErrorResponse(domain.StatusREFUSED)
	}
	idx, ok := catalog.Find(q.Name)
	if !ok || !q.Class.Matches(idx.Class()) {
		return domain.NewErrorResponse(domain.StatusREFUSED)
	}

	resp, err := r.answer(idx, q)
	if err != nil {
		r.logger.Warn(map[string]any{
			"zone":  idx.Origin(),
			"name":  q.Name,
			"type":  q.Type.String(),
			"error": err.Error(),
		}, "Resolution failed")
		return domain.NewErrorResponse(domain.StatusSERVFAIL)
	}
	return resp
}
