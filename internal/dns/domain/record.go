package domain

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
)

// ResourceRecord is an authoritative DNS resource record served from zone data.
// The rdata is held in wire form (Data) and presentation form (Text).
// A ResourceRecord is immutable: fields are only readable through accessors.
type ResourceRecord struct {
	name   string
	rrtype RRType
	class  RRClass
	ttl    uint32
	data   []byte
	text   string
}

// NewResourceRecord constructs a validated ResourceRecord. The owner name is
// canonicalized and data is copied, so later changes to the caller's slice
// are not observed.
func NewResourceRecord(name string, rrtype RRType, class RRClass, ttl uint32, data []byte, text string) (ResourceRecord, error) {
	rr := ResourceRecord{
		name:   utils.CanonicalDNSName(name),
		rrtype: rrtype,
		class:  class,
		ttl:    ttl,
		data:   slices.Clone(data),
		text:   strings.TrimSpace(text),
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if rr.name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	// Labels are split on '.', so an escaped dot would split a label in two.
	if strings.ContainsRune(rr.name, '\\') {
		return fmt.Errorf("record name %q: escaped characters are not supported", rr.name)
	}
	if !rr.rrtype.IsZoneData() {
		return fmt.Errorf("invalid RRType for zone data: %s", rr.rrtype)
	}
	if !rr.class.IsValid() || rr.class == RRClassANY || rr.class == RRClassNONE {
		return fmt.Errorf("invalid RRClass: %d", rr.class)
	}
	if rr.text == "" && len(rr.data) == 0 {
		return fmt.Errorf("either Text or Data must be set")
	}
	return nil
}

func (rr ResourceRecord) Name() string   { return rr.name }
func (rr ResourceRecord) Type() RRType   { return rr.rrtype }
func (rr ResourceRecord) Class() RRClass { return rr.class }
func (rr ResourceRecord) TTL() uint32    { return rr.ttl }
func (rr ResourceRecord) Text() string   { return rr.text }

// Data returns a copy of the wire-encoded rdata.
func (rr ResourceRecord) Data() []byte { return slices.Clone(rr.data) }

// DataLen returns the length of the wire-encoded rdata without copying it.
func (rr ResourceRecord) DataLen() int { return len(rr.data) }

// WithName returns a copy of the record owned by name. Wildcard synthesis
// uses it to answer with the queried name in place of the wildcard owner.
func (rr ResourceRecord) WithName(name string) ResourceRecord {
	out := rr
	out.name = utils.CanonicalDNSName(name)
	return out
}

// Target returns the domain name an NS, CNAME, PTR, MX or SRV record points at.
func (rr ResourceRecord) Target() (string, bool) {
	fields := strings.Fields(rr.text)
	var target string
	switch rr.rrtype {
	case RRTypeNS, RRTypeCNAME, RRTypePTR:
		if len(fields) != 1 {
			return "", false
		}
		target = fields[0]
	case RRTypeMX:
		if len(fields) != 2 {
			return "", false
		}
		target = fields[1]
	case RRTypeSRV:
		if len(fields) != 4 {
			return "", false
		}
		target = fields[3]
	default:
		return "", false
	}
	target = utils.CanonicalDNSName(target)
	return target, target != ""
}

// CacheKey returns a key derived from the record's name, type, and class.
func (rr ResourceRecord) CacheKey() string {
	return GenerateCacheKey(rr.name, rr.rrtype, rr.class)
}

// Equal reports whether two records carry the same owner, type, class, TTL and rdata.
func (rr ResourceRecord) Equal(other ResourceRecord) bool {
	return rr.name == other.name &&
		rr.rrtype == other.rrtype &&
		rr.class == other.class &&
		rr.ttl == other.ttl &&
		rr.text == other.text &&
		bytes.Equal(rr.data, other.data)
}

// String renders the record in master-file presentation form.
func (rr ResourceRecord) String() string {
	return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", utils.PresentationDNSName(rr.name), rr.ttl, rr.class, rr.rrtype, rr.text)
}

// GenerateCacheKey returns a consistent key for a DNS name, type, and class.
// Uses pipe (|) separator to avoid conflicts with colons in IPv6 addresses.
func GenerateCacheKey(name string, t RRType, c RRClass) string {
	return utils.CanonicalDNSName(name) + "|" + t.String() + "|" + c.String()
}
