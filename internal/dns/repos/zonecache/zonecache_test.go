package zonecache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesome-nfv/shuke/internal/dns/repos/zone"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
)

func index(t testing.TB, origin string, serial int) *zoneindex.Index {
	t.Helper()
	text := fmt.Sprintf("$ORIGIN %s.\n@ 300 IN SOA ns1 hm %d 1 1 1 1\nwww 300 IN A 192.0.2.1\n", origin, serial)
	z, err := zone.Parse(text, zone.ParseOptions{})
	require.NoError(t, err)
	return zoneindex.Build(z, time.Now())
}

func TestNew(t *testing.T) {
	zc := New()
	require.NotNil(t, zc.Current())
	assert.Equal(t, 0, zc.Current().Len())
	assert.Empty(t, zc.Zones())
	assert.Equal(t, 0, zc.Count())
}

func TestZoneCache_PutReplaceClear(t *testing.T) {
	zc := New()

	zc.PutZone(index(t, "example.com", 1))
	zc.PutZone(index(t, "example.org", 1))
	assert.Equal(t, []string{"example.com", "example.org"}, zc.Zones())
	assert.Equal(t, 4, zc.Count())

	before := zc.Current()
	zc.PutZone(index(t, "example.com", 2))
	idx, ok := zc.Current().Get("example.com")
	require.True(t, ok)
	assert.Equal(t, uint32(2), idx.Serial())
	old, _ := before.Get("example.com")
	assert.Equal(t, uint32(1), old.Serial(), "published catalogs are never modified")

	zc.Replace(index(t, "example.net", 1), index(t, "example.info", 1))
	assert.Equal(t, []string{"example.info", "example.net"}, zc.Zones())

	gen := zc.Current().Generation()
	zc.Clear()
	assert.Empty(t, zc.Zones())
	assert.Greater(t, zc.Current().Generation(), gen)
}

func TestZoneCache_ConcurrentWriters(t *testing.T) {
	zc := New()
	idxs := make([]*zoneindex.Index, 20)
	for i := range idxs {
		idxs[i] = index(t, fmt.Sprintf("zone%d.example", i), 1)
	}
	var wg sync.WaitGroup
	for _, idx := range idxs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			zc.PutZone(idx)
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = zc.Current().Len()
		}()
	}
	wg.Wait()
	assert.Len(t, zc.Zones(), 20, "serialized writers must not lose updates")
	assert.Equal(t, uint64(20), zc.Current().Generation())
}
