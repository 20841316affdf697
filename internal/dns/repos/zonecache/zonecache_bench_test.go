package zonecache

import (
	"testing"
)

func BenchmarkZoneCache_Current(b *testing.B) {
	zc := New()
	zc.PutZone(index(b, "example.com", 1))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, ok := zc.Current().Find("www.example.com"); !ok {
				b.Error("zone not found")
			}
		}
	})
}

func BenchmarkZoneCache_PutZone(b *testing.B) {
	zc := New()
	idx := index(b, "example.com", 1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		zc.PutZone(idx)
	}
}
