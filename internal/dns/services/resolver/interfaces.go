package resolver

import (
	"context"
	"net"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zoneindex"
)

// ZoneCache publishes the catalog of zone indexes queries are answered from.
// Current must never return nil and must be safe for concurrent use.
type ZoneCache interface {
	Current() *zoneindex.Catalog
}

// Cache stores complete responses. Keys embed the catalog generation, so an
// entry can never outlive the zone data it was computed from.
type Cache interface {
	Get(key string) (domain.Response, bool)
	Set(key string, resp domain.Response)
	Len() int
	Purge()
}

// RequestHandler processes a DNS question and returns a response.
// The transport handles all network protocol details; the handler only sees domain objects.
type RequestHandler interface {
	HandleQuery(ctx context.Context, query domain.Question, clientAddr net.Addr) domain.Response
}

// ServerTransport defines the interface for DNS server transport implementations.
// Different transport types (UDP, TCP) implement this interface while
// providing the same request handling contract to the service layer.
type ServerTransport interface {
	// Start begins listening for requests and handling them via the provided handler.
	// It returns once the listener is bound.
	Start(ctx context.Context, handler RequestHandler) error

	// Stop gracefully shuts down the transport, closing connections and cleaning up resources.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}
