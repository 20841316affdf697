package transport

import (
	"fmt"
	"slices"

	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/gateways/wire"
	"github.com/awesome-nfv/shuke/internal/dns/services/resolver"
)

// NewTransport creates a new transport instance based on the specified type.
func NewTransport(transportType TransportType, addr string, codec wire.DNSCodec, logger log.Logger) (resolver.ServerTransport, error) {
	switch transportType {
	case TransportUDP, TransportTCP:
		return NewDNSTransport(transportType, addr, codec, logger), nil

	case TransportDoH:
		return nil, fmt.Errorf("DNS over HTTPS transport not yet implemented")

	case TransportDoT:
		return nil, fmt.Errorf("DNS over TLS transport not yet implemented")

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// GetSupportedTransports returns a list of currently supported transport types.
func GetSupportedTransports() []TransportType {
	return []TransportType{TransportUDP, TransportTCP}
}

// IsTransportSupported checks if a given transport type is currently supported.
func IsTransportSupported(transportType TransportType) bool {
	return slices.Contains(GetSupportedTransports(), transportType)
}
