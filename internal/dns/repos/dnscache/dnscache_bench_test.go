package dnscache

import (
	"strconv"
	"testing"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

func BenchmarkDnsCache_Set(b *testing.B) {
	cache, err := New(1000)
	if err != nil {
		b.Fatalf("failed to create cache: %v", err)
	}
	resp := domain.NewErrorResponse(domain.StatusNXDOMAIN)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Set(strconv.Itoa(i%2000), resp)
	}
}

func BenchmarkDnsCache_Get(b *testing.B) {
	cache, err := New(1000)
	if err != nil {
		b.Fatalf("failed to create cache: %v", err)
	}
	for i := 0; i < 1000; i++ {
		cache.Set(strconv.Itoa(i), domain.NewErrorResponse(domain.StatusNXDOMAIN))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(strconv.Itoa(i % 1000))
	}
}
