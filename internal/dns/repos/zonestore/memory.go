package zonestore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// memoryStore implements Store with a map guarded by a RWMutex.
type memoryStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	zones   map[string]domain.Zone
	updated time.Time
}

// NewMemory returns an empty in-memory Store. A nil clk uses the real clock.
func NewMemory(clk clock.Clock) Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &memoryStore{clock: clk, zones: make(map[string]domain.Zone)}
}

func (s *memoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.zones)
	s.updated = s.clock.Now()
	return nil
}

func (s *memoryStore) Write(ctx context.Context, zone domain.Zone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if zone.IsZero() {
		return &domain.ValidationError{Reason: "cannot store an empty zone"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[zone.Origin()] = zone
	s.updated = s.clock.Now()
	return nil
}

func (s *memoryStore) Replace(ctx context.Context, zones []domain.Zone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := make(map[string]domain.Zone, len(zones))
	for _, zone := range zones {
		if zone.IsZero() {
			return &domain.ValidationError{Reason: "cannot store an empty zone"}
		}
		next[zone.Origin()] = zone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = next
	s.updated = s.clock.Now()
	return nil
}

func (s *memoryStore) Zones(ctx context.Context) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	slices.SortFunc(out, func(a, b domain.Zone) int { return strings.Compare(a.Origin(), b.Origin()) })
	return out, nil
}

func (s *memoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Zones: len(s.zones), UpdatedAt: s.updated}
	for _, z := range s.zones {
		st.Records += z.Len()
	}
	return st
}

func (s *memoryStore) Close() error { return nil }
