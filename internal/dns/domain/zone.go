package domain

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
)

// Zone is the unit of authoritative data: an origin plus its records in
// load order. A Zone always holds exactly one SOA, located at the origin,
// and every record is owned by the origin or a name below it.
type Zone struct {
	origin  string
	class   RRClass
	serial  uint32
	soa     ResourceRecord
	records []ResourceRecord
}

// NewZone validates records against the zone invariants and returns the Zone.
// Violations are reported as *ValidationError.
func NewZone(origin string, records []ResourceRecord) (Zone, error) {
	origin = utils.CanonicalDNSName(origin)
	if origin == "" {
		return Zone{}, &ValidationError{Zone: origin, Reason: "zone origin must not be the root or empty"}
	}

	z := Zone{origin: origin, records: slices.Clone(records)}
	var soaCount int
	cnames := make(map[string]int)
	others := make(map[string]bool)
	for i, rr := range z.records {
		if err := rr.Validate(); err != nil {
			return Zone{}, &ValidationError{Zone: origin, Name: rr.Name(), Reason: err.Error()}
		}
		if !utils.IsSubdomain(rr.Name(), origin) {
			return Zone{}, &ValidationError{Zone: origin, Name: rr.Name(), Reason: "record name is outside the zone origin"}
		}
		if i == 0 {
			z.class = rr.Class()
		} else if rr.Class() != z.class {
			return Zone{}, &ValidationError{Zone: origin, Name: rr.Name(), Reason: "records of mixed classes in one zone"}
		}
		switch rr.Type() {
		case RRTypeSOA:
			soaCount++
			if rr.Name() != origin {
				return Zone{}, &ValidationError{Zone: origin, Name: rr.Name(), Reason: "SOA record must be at the zone origin"}
			}
			z.soa = rr
		case RRTypeCNAME:
			cnames[rr.Name()]++
		default:
			others[rr.Name()] = true
		}
	}

	switch {
	case soaCount == 0:
		return Zone{}, &ValidationError{Zone: origin, Reason: ErrMissingSOA.Error()}
	case soaCount > 1:
		return Zone{}, &ValidationError{Zone: origin, Reason: "zone has more than one SOA record"}
	}

	for name, n := range cnames {
		if n > 1 {
			return Zone{}, &ValidationError{Zone: origin, Name: name, Reason: "multiple CNAME records at one name"}
		}
		if others[name] || name == origin {
			return Zone{}, &ValidationError{Zone: origin, Name: name, Reason: "CNAME cannot coexist with other data"}
		}
	}

	serial, err := soaSerial(z.soa)
	if err != nil {
		return Zone{}, &ValidationError{Zone: origin, Name: origin, Reason: err.Error()}
	}
	z.serial = serial
	return z, nil
}

// soaSerial reads the serial field from SOA presentation text
// ("mname rname serial refresh retry expire minimum").
func soaSerial(soa ResourceRecord) (uint32, error) {
	fields := strings.Fields(soa.Text())
	if len(fields) != 7 {
		return 0, errors.New("malformed SOA rdata")
	}
	serial, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return 0, errors.New("malformed SOA serial")
	}
	return uint32(serial), nil
}

// Origin returns the canonical zone apex.
func (z Zone) Origin() string { return z.origin }

// Serial returns the SOA serial.
func (z Zone) Serial() uint32 { return z.serial }

// Class returns the class shared by all records of the zone.
func (z Zone) Class() RRClass { return z.class }

// SOA returns the zone's single SOA record.
func (z Zone) SOA() ResourceRecord { return z.soa }

// Records returns the zone's records in load order.
func (z Zone) Records() []ResourceRecord { return slices.Clone(z.records) }

// Len returns the number of records in the zone.
func (z Zone) Len() int { return len(z.records) }

// IsZero reports whether z is the zero Zone.
func (z Zone) IsZero() bool { return z.origin == "" }
