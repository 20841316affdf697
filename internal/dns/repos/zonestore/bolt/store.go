// Package bolt implements zonestore.Store on a bbolt database. Each zone
// lives in its own bucket under the zones bucket; records are CBOR-encoded
// with their wire rdata under big-endian sequence keys so load order
// survives a round trip.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/common/rrdata"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonestore"
)

var (
	bucketZones = []byte("zones")
	bucketMeta  = []byte("meta")

	// keyUpdated cannot collide with an origin: names never contain NUL.
	keyUpdated = []byte("\x00updated")
)

// recordDTO is the stored form of one resource record.
type recordDTO struct {
	Name  string `cbor:"1,keyasint"`
	Type  uint16 `cbor:"2,keyasint"`
	Class uint16 `cbor:"3,keyasint"`
	TTL   uint32 `cbor:"4,keyasint"`
	Data  []byte `cbor:"5,keyasint"`
}

// zoneMeta is stored in the meta bucket under the zone origin.
type zoneMeta struct {
	Serial    uint32 `cbor:"1,keyasint"`
	Records   int    `cbor:"2,keyasint"`
	WrittenAt int64  `cbor:"3,keyasint"`
}

// boltStore implements zonestore.Store using bbolt.
type boltStore struct {
	db    *bbolt.DB
	clock clock.Clock
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string, clk clock.Clock) (zonestore.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(ensureBuckets); err != nil {
		_ = db.Close()
		return nil, err
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &boltStore{db: db, clock: clk}, nil
}

func ensureBuckets(tx *bbolt.Tx) error {
	if _, err := tx.CreateBucketIfNotExists(bucketZones); err != nil {
		return err
	}
	_, err := tx.CreateBucketIfNotExists(bucketMeta)
	return err
}

func (s *boltStore) Close() error { return s.db.Close() }

// Clear drops both buckets and recreates them in one transaction.
func (s *boltStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := resetBuckets(tx); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Write replaces the bucket of zone.Origin() with the zone's records.
func (s *boltStore) Write(ctx context.Context, zone domain.Zone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := s.putZone(tx, zone); err != nil {
			return err
		}
		return s.touch(tx)
	})
}

// Replace clears the store and writes zones in a single transaction, so a
// failure part way through rolls back to the previous content.
func (s *boltStore) Replace(ctx context.Context, zones []domain.Zone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := resetBuckets(tx); err != nil {
			return err
		}
		for _, zone := range zones {
			if err := s.putZone(tx, zone); err != nil {
				return err
			}
		}
		return s.touch(tx)
	})
}

func resetBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketZones, bucketMeta} {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
	}
	return ensureBuckets(tx)
}

func (s *boltStore) putZone(tx *bbolt.Tx, zone domain.Zone) error {
	if zone.IsZero() {
		return &domain.ValidationError{Reason: "cannot store an empty zone"}
	}
	origin := []byte(zone.Origin())
	records := zone.Records()

	zones := tx.Bucket(bucketZones)
	if err := zones.DeleteBucket(origin); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
		return err
	}
	b, err := zones.CreateBucket(origin)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	for i, rr := range records {
		val, err := cbor.Marshal(recordDTO{
			Name:  rr.Name(),
			Type:  uint16(rr.Type()),
			Class: uint16(rr.Class()),
			TTL:   rr.TTL(),
			Data:  rr.Data(),
		})
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rr.Name(), err)
		}
		binary.BigEndian.PutUint64(key, uint64(i))
		if err := b.Put(key, val); err != nil {
			return err
		}
	}

	meta, err := cbor.Marshal(zoneMeta{
		Serial:    zone.Serial(),
		Records:   len(records),
		WrittenAt: s.clock.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return tx.Bucket(bucketMeta).Put(origin, meta)
}

// Zones decodes every stored zone. Presentation text is rebuilt from the
// stored wire rdata and each zone is validated again on the way out.
func (s *boltStore) Zones(ctx context.Context) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.Zone
	err := s.db.View(func(tx *bbolt.Tx) error {
		zones := tx.Bucket(bucketZones)
		return zones.ForEachBucket(func(origin []byte) error {
			z, err := readZone(string(origin), zones.Bucket(origin))
			if err != nil {
				return err
			}
			out = append(out, z)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readZone(origin string, b *bbolt.Bucket) (domain.Zone, error) {
	var records []domain.ResourceRecord
	err := b.ForEach(func(_, v []byte) error {
		var dto recordDTO
		if err := cbor.Unmarshal(v, &dto); err != nil {
			return fmt.Errorf("decode record in zone %s: %w", origin, err)
		}
		rrtype := domain.RRType(dto.Type)
		text, err := rrdata.Decode(rrtype, dto.Data)
		if err != nil {
			return fmt.Errorf("stored rdata of %s in zone %s: %w", dto.Name, origin, err)
		}
		rr, err := domain.NewResourceRecord(dto.Name, rrtype, domain.RRClass(dto.Class), dto.TTL, dto.Data, text)
		if err != nil {
			return fmt.Errorf("stored record %s in zone %s: %w", dto.Name, origin, err)
		}
		records = append(records, rr)
		return nil
	})
	if err != nil {
		return domain.Zone{}, err
	}
	return domain.NewZone(origin, records)
}

func (s *boltStore) Stats() zonestore.Stats {
	st := zonestore.Stats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		return meta.ForEach(func(k, v []byte) error {
			if string(k) == string(keyUpdated) {
				if len(v) == 8 {
					st.UpdatedAt = time.Unix(int64(binary.BigEndian.Uint64(v)), 0)
				}
				return nil
			}
			var zm zoneMeta
			if err := cbor.Unmarshal(v, &zm); err != nil {
				return nil
			}
			st.Zones++
			st.Records += zm.Records
			return nil
		})
	})
	return st
}

// touch records the time of the last mutation in the meta bucket.
func (s *boltStore) touch(tx *bbolt.Tx) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(s.clock.Now().Unix()))
	return tx.Bucket(bucketMeta).Put(keyUpdated, buf)
}
