// Package rrdata converts record data between presentation text and the
// uncompressed wire form carried in DNS messages.
//
// Domain names in presentation text are canonical (lowercase, no trailing
// dot); the root name is written ".". TXT data is a sequence of quoted
// character-strings, for example `"v=spf1 -all" "second segment"`.
package rrdata

import (
	"fmt"
	"net"
	"strings"

	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
)

// encodeDomainName encodes a domain name into wire format (length-prefixed labels ending in 0).
// used in multiple record types
func encodeDomainName(name string) ([]byte, error) {
	// name = foo.example.com.
	name = utils.CanonicalDNSName(name)
	if name == "" {
		return []byte{0}, nil
	}
	if strings.ContainsRune(name, '\\') {
		return nil, fmt.Errorf("escaped characters are not supported in %q", name)
	}
	var encoded []byte
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 {
			return nil, fmt.Errorf("empty label in %q", name)
		}
		if len(label) > 63 {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	encoded = append(encoded, 0) // null terminator
	if len(encoded) > 255 {
		return nil, fmt.Errorf("domain name too long: %s", name)
	}
	return encoded, nil
}

// decodeDomainName reads an uncompressed wire name from the start of b and
// returns it along with the number of bytes consumed.
func decodeDomainName(b []byte) (string, int, error) {
	var labels []string
	for i := 0; i < len(b); {
		labelLen := int(b[i])
		i++
		if labelLen == 0 {
			if len(labels) == 0 {
				return ".", i, nil
			}
			return strings.ToLower(strings.Join(labels, ".")), i, nil
		}
		if labelLen > 63 {
			return "", 0, fmt.Errorf("compressed or oversized label at offset %d", i-1)
		}
		if i+labelLen > len(b) {
			return "", 0, fmt.Errorf("invalid domain name encoding")
		}
		labels = append(labels, string(b[i:i+labelLen]))
		i += labelLen
	}
	return "", 0, fmt.Errorf("domain name is not terminated")
}

// decodeSingleName decodes rdata that holds exactly one domain name.
func decodeSingleName(b []byte) (string, error) {
	name, n, err := decodeDomainName(b)
	if err != nil {
		return "", err
	}
	if n != len(b) {
		return "", fmt.Errorf("%d trailing bytes after domain name", len(b)-n)
	}
	return name, nil
}

// isIPv4 checks whether the provided net.IP address is an IPv4 address.
func isIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

// isIPv6 checks whether the provided net.IP is a valid IPv6 address and not
// an IPv4 address in either notation.
func isIPv6(ip net.IP) bool {
	return ip != nil && ip.To16() != nil && ip.To4() == nil
}
