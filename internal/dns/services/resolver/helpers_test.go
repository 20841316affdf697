package resolver

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zone"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
)

var testTime = time.Unix(1700000000, 0)

// stubZoneCache publishes a catalog through an atomic pointer.
type stubZoneCache struct {
	current atomic.Pointer[zoneindex.Catalog]
}

func newStubZoneCache(c *zoneindex.Catalog) *stubZoneCache {
	s := &stubZoneCache{}
	s.current.Store(c)
	return s
}

func (s *stubZoneCache) Current() *zoneindex.Catalog { return s.current.Load() }

// stubCache is a map-backed Cache that counts hits.
type stubCache struct {
	mu   sync.Mutex
	m    map[string]domain.Response
	hits int
}

func newStubCache() *stubCache { return &stubCache{m: map[string]domain.Response{}} }

func (c *stubCache) Get(key string) (domain.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *stubCache) Set(key string, resp domain.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = resp
}

func (c *stubCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *stubCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}

// recordingLogger keeps the messages it receives.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func (l *recordingLogger) Info(_ map[string]any, msg string)  { l.record(msg) }
func (l *recordingLogger) Error(_ map[string]any, msg string) { l.record(msg) }
func (l *recordingLogger) Debug(_ map[string]any, msg string) { l.record(msg) }
func (l *recordingLogger) Warn(_ map[string]any, msg string)  { l.record(msg) }
func (l *recordingLogger) Panic(_ map[string]any, msg string) { l.record(msg) }
func (l *recordingLogger) Fatal(_ map[string]any, msg string) { l.record(msg) }

func buildIndex(t testing.TB, text string) *zoneindex.Index {
	t.Helper()
	z, err := zone.Parse(text, zone.ParseOptions{})
	require.NoError(t, err)
	return zoneindex.Build(z, testTime)
}

func newTestResolver(t testing.TB, texts ...string) (*Resolver, *recordingLogger) {
	t.Helper()
	idxs := make([]*zoneindex.Index, 0, len(texts))
	for _, text := range texts {
		idxs = append(idxs, buildIndex(t, text))
	}
	logger := &recordingLogger{}
	r := NewResolver(ResolverOptions{
		Logger:    logger,
		ZoneCache: newStubZoneCache(zoneindex.NewCatalog().With(idxs...)),
	})
	return r, logger
}

func texts(rrs []domain.ResourceRecord) []string {
	out := make([]string, len(rrs))
	for i, rr := range rrs {
		out[i] = rr.Name() + " " + rr.Type().String() + " " + rr.Text()
	}
	return out
}
