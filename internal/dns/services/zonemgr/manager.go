// Package zonemgr keeps the zone store and the served zone indexes in step:
// every change is persisted first, then indexed and published in one swap.
package zonemgr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zone"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonestore"
)

// DefaultDebounce is how long Watch waits for file events to settle.
const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	Store zonestore.Store
	Zones IndexPublisher
	// Cache is optional; when set it is purged after every publish.
	Cache      Purger
	Clock      clock.Clock
	Logger     log.Logger
	DefaultTTL uint32
	Debounce   time.Duration
}

// Manager serializes zone changes. Readers of the published catalog never
// wait on it.
type Manager struct {
	mu         sync.Mutex
	store      zonestore.Store
	zones      IndexPublisher
	cache      Purger
	clock      clock.Clock
	logger     log.Logger
	defaultTTL uint32
	debounce   time.Duration
}

func New(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("zonemgr: store is required")
	}
	if opts.Zones == nil {
		return nil, errors.New("zonemgr: index publisher is required")
	}
	m := &Manager{
		store:      opts.Store,
		zones:      opts.Zones,
		cache:      opts.Cache,
		clock:      opts.Clock,
		logger:     opts.Logger,
		defaultTTL: opts.DefaultTTL,
		debounce:   opts.Debounce,
	}
	if m.clock == nil {
		m.clock = clock.RealClock{}
	}
	if m.logger == nil {
		m.logger = log.NewNoopLogger()
	}
	if m.debounce <= 0 {
		m.debounce = DefaultDebounce
	}
	return m, nil
}

// Load parses zone text without side effects. origin may be empty when the
// text carries $ORIGIN or the SOA owner is the origin.
func (m *Manager) Load(text, origin string) (domain.Zone, error) {
	return zone.Parse(text, zone.ParseOptions{Origin: origin, DefaultTTL: m.defaultTTL})
}

// Clear removes every zone from the store and stops serving them. It is a
// teardown: queries are refused until zones are written again. Use Reload to
// swap the served zones without a gap.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	m.zones.Clear()
	m.purge()
	m.logger.Info(map[string]any{"generation": m.zones.Current().Generation()}, "Zones cleared")
	return nil
}

// Write persists z, replacing any zone with the same origin, then serves it.
// A store failure leaves the served zones unchanged.
func (m *Manager) Write(ctx context.Context, z domain.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Write(ctx, z); err != nil {
		return fmt.Errorf("write zone %q: %w", z.Origin(), err)
	}
	idx := zoneindex.Build(z, m.clock.Now())
	m.zones.PutZone(idx)
	m.purge()
	m.logger.Info(map[string]any{
		"zone":       z.Origin(),
		"serial":     z.Serial(),
		"records":    z.Len(),
		"cuts":       idx.Cuts(),
		"generation": m.zones.Current().Generation(),
	}, "Zone published")
	return nil
}

// Init publishes every zone currently in the store.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	zones, err := m.store.Zones(ctx)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	m.publish(zones)
	return nil
}

// Reload replaces the stored and served zones with zones. The store is
// rewritten in one step and the new indexes are published in a single swap,
// so readers see either the old zones or the new ones. On error neither the
// store nor the served zones change.
func (m *Manager) Reload(ctx context.Context, zones ...domain.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Replace(ctx, zones); err != nil {
		return fmt.Errorf("replace stored zones: %w", err)
	}
	m.publish(zones)
	return nil
}

// ReloadDirectory replaces all zones with those parsed from dir. Every file
// is parsed before anything changes, so a bad file leaves the old zones
// serving.
func (m *Manager) ReloadDirectory(ctx context.Context, dir string) error {
	zones, err := zone.LoadDirectory(dir, m.defaultTTL)
	if err != nil {
		return fmt.Errorf("load zone directory: %w", err)
	}
	return m.Reload(ctx, zones...)
}

// publish builds indexes for zones and swaps them in as the whole served set.
func (m *Manager) publish(zones []domain.Zone) {
	now := m.clock.Now()
	idxs := make([]*zoneindex.Index, 0, len(zones))
	for _, z := range zones {
		idxs = append(idxs, zoneindex.Build(z, now))
	}
	m.zones.Replace(idxs...)
	m.purge()

	stats := m.store.Stats()
	m.logger.Info(map[string]any{
		"zones":      stats.Zones,
		"records":    stats.Records,
		"generation": m.zones.Current().Generation(),
	}, "Zones published")
}

func (m *Manager) purge() {
	if m.cache != nil {
		m.cache.Purge()
	}
}
