// Package zonestore defines the pluggable backing store for authoritative
// zones and an in-memory implementation. Persistent backends live in
// subpackages.
package zonestore

import (
	"context"
	"time"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// Stats captures high-level counts and metadata for a store.
type Stats struct {
	Zones   int
	Records int
	// UpdatedAt is the time of the last Write or Clear, zero if none.
	UpdatedAt time.Time
}

// Store holds zones keyed by origin.
// - Clear: drop every zone; clearing an empty store succeeds
// - Write: persist a zone, replacing any zone with the same origin in full
// - Replace: swap the whole content for zones; on error nothing changes
// - Zones: read back every zone, sorted by origin
// - Stats: counts and metadata; Close: release resources
type Store interface {
	Clear(ctx context.Context) error
	Write(ctx context.Context, zone domain.Zone) error
	Replace(ctx context.Context, zones []domain.Zone) error
	Zones(ctx context.Context) ([]domain.Zone, error)
	Stats() Stats
	Close() error
}
