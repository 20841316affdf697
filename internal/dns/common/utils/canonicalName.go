package utils

import "strings"

// CanonicalDNSName returns a DNS name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot because it doesn't add any runtime benefit, only legacy baggage.
//
// The root name canonicalizes to the empty string.
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	// remove all trailing dots
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// PresentationDNSName returns the canonical name with a single trailing dot,
// the form used on the wire and in zone files. The root becomes ".".
func PresentationDNSName(name string) string {
	return CanonicalDNSName(name) + "."
}
