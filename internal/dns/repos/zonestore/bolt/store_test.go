package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zone"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonestore"
)

const exampleZone = `$ORIGIN example.com.
$TTL 300
@       IN SOA ns1 hostmaster 2024010101 3600 600 86400 300
        IN NS  ns1
        IN MX  10 mail
ns1     IN A   192.0.2.1
www     IN A   192.0.2.10
www     IN A   192.0.2.11
        IN AAAA 2001:db8::10
alias   IN CNAME www
*.wild  IN A   192.0.2.99
txt     IN TXT "hello \"quoted\" world" "two"
_sip._udp IN SRV 10 5 5060 sip
@       IN CAA 0 issue "letsencrypt.org"
`

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "zones.db")
}

func openStore(t *testing.T, path string, clk clock.Clock) zonestore.Store {
	t.Helper()
	st, err := New(path, clk)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func parse(t *testing.T, text string) domain.Zone {
	t.Helper()
	z, err := zone.Parse(text, zone.ParseOptions{})
	require.NoError(t, err)
	return z
}

func TestBoltStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, tempDB(t), clock.RealClock{})
	original := parse(t, exampleZone)

	require.NoError(t, st.Write(ctx, original))

	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	got := zones[0]

	assert.Equal(t, original.Origin(), got.Origin())
	assert.Equal(t, original.Serial(), got.Serial())
	want := original.Records()
	have := got.Records()
	require.Len(t, have, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(have[i]), "record %d: want %s, got %s", i, want[i], have[i])
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := tempDB(t)

	st, err := New(path, &clock.MockClock{CurrentTime: time.Unix(5000, 0)})
	require.NoError(t, err)
	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))
	require.NoError(t, st.Close())

	st = openStore(t, path, clock.RealClock{})
	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "example.com", zones[0].Origin())

	stats := st.Stats()
	assert.Equal(t, 1, stats.Zones)
	assert.Equal(t, 12, stats.Records)
	assert.Equal(t, time.Unix(5000, 0), stats.UpdatedAt)
}

func TestBoltStore_WriteOverwrites(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, tempDB(t), clock.RealClock{})

	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))
	replacement := parse(t, "$ORIGIN example.com.\n@ 60 IN SOA ns1 hm 2 1 1 1 1\nonly 60 IN A 192.0.2.5\n")
	require.NoError(t, st.Write(ctx, replacement))
	require.NoError(t, st.Write(ctx, parse(t, "$ORIGIN example.org.\n@ 60 IN SOA ns1 hm 1 1 1 1 1\n")))

	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "example.com", zones[0].Origin())
	assert.Equal(t, uint32(2), zones[0].Serial())
	assert.Equal(t, 2, zones[0].Len())
	assert.Equal(t, "example.org", zones[1].Origin())
	assert.Equal(t, 3, st.Stats().Records)
}

func TestBoltStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, tempDB(t), clock.RealClock{})

	require.NoError(t, st.Clear(ctx))
	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))
	require.NoError(t, st.Clear(ctx))
	require.NoError(t, st.Clear(ctx))

	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	assert.Empty(t, zones)
	assert.Equal(t, 0, st.Stats().Zones)

	require.NoError(t, st.Write(ctx, parse(t, exampleZone)), "store is writable after clear")
}

func TestBoltStore_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	path := tempDB(t)
	st, err := New(path, clock.RealClock{})
	require.NoError(t, err)
	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))

	bs := st.(*boltStore)
	require.NoError(t, bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketZones).Bucket([]byte("example.com")).Put([]byte("garbage"), []byte{0xff, 0x00})
	}))

	_, err = st.Zones(ctx)
	assert.Error(t, err)
	require.NoError(t, st.Close())
}

func TestBoltStore_RejectsZeroZone(t *testing.T) {
	st := openStore(t, tempDB(t), clock.RealClock{})
	assert.ErrorIs(t, st.Write(context.Background(), domain.Zone{}), domain.ErrValidation)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "zones.db"), clock.RealClock{})
	assert.Error(t, err)
}

func TestBoltStore_CorruptRdata(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, tempDB(t), clock.RealClock{})
	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))

	val, err := cbor.Marshal(recordDTO{Name: "bad.example.com", Type: uint16(domain.RRTypeA), Class: uint16(domain.RRClassIN), TTL: 60, Data: []byte{192, 0, 2}})
	require.NoError(t, err)
	bs := st.(*boltStore)
	require.NoError(t, bs.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketZones).Bucket([]byte("example.com")).Put([]byte("zzzzzzzz"), val)
	}))

	_, err = st.Zones(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stored rdata of bad.example.com")
}

func TestBoltStore_Replace(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, tempDB(t), &clock.MockClock{CurrentTime: time.Unix(7000, 0)})

	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))
	org := parse(t, "$ORIGIN example.org.\n@ 60 IN SOA ns1 hm 1 1 1 1 1\nwww 60 IN A 192.0.2.7\n")
	netZone := parse(t, "$ORIGIN example.net.\n@ 60 IN SOA ns1 hm 9 1 1 1 1\n")
	require.NoError(t, st.Replace(ctx, []domain.Zone{org, netZone}))

	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, "example.net", zones[0].Origin())
	assert.Equal(t, "example.org", zones[1].Origin())

	stats := st.Stats()
	assert.Equal(t, 2, stats.Zones)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, time.Unix(7000, 0), stats.UpdatedAt)
}

func TestBoltStore_ReplaceFailureKeepsPreviousContent(t *testing.T) {
	ctx := context.Background()
	path := tempDB(t)

	st, err := New(path, clock.RealClock{})
	require.NoError(t, err)
	require.NoError(t, st.Write(ctx, parse(t, exampleZone)))

	org := parse(t, "$ORIGIN example.org.\n@ 60 IN SOA ns1 hm 1 1 1 1 1\n")
	err = st.Replace(ctx, []domain.Zone{org, {}})
	assert.ErrorIs(t, err, domain.ErrValidation)
	require.NoError(t, st.Close())

	st = openStore(t, path, clock.RealClock{})
	zones, err := st.Zones(ctx)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "example.com", zones[0].Origin())
	assert.Equal(t, 12, zones[0].Len())
	assert.Equal(t, 1, st.Stats().Zones)
}

func TestBoltStore_ReplaceCancelled(t *testing.T) {
	st := openStore(t, tempDB(t), clock.RealClock{})
	require.NoError(t, st.Write(context.Background(), parse(t, exampleZone)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, st.Replace(ctx, nil), context.Canceled)

	zones, err := st.Zones(context.Background())
	require.NoError(t, err)
	assert.Len(t, zones, 1)
}
