package domain

import "strings"

// RRClass represents a DNS class (usually IN for Internet).
type RRClass uint16

// DNS Resource Record Class constants
const (
	RRClassIN   RRClass = 1   // IN - Internet
	RRClassCH   RRClass = 3   // CH - Chaos
	RRClassHS   RRClass = 4   // HS - Hesiod
	RRClassNONE RRClass = 254 // NONE - No class
	RRClassANY  RRClass = 255 // ANY - Any class (query only)
)

var rrClassNames = map[RRClass]string{
	RRClassIN:   "IN",
	RRClassCH:   "CH",
	RRClassHS:   "HS",
	RRClassNONE: "NONE",
	RRClassANY:  "ANY",
}

// IsValid returns true if the RRClass is one of the supported classes.
func (c RRClass) IsValid() bool {
	_, ok := rrClassNames[c]
	return ok
}

// Matches reports whether a question of class c may be answered with
// records of class zone.
func (c RRClass) Matches(zone RRClass) bool {
	return c == RRClassANY || c == zone
}

// String returns the textual representation of the RRClass.
func (c RRClass) String() string {
	if name, ok := rrClassNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseRRClass converts a class mnemonic (any case) to an RRClass value.
func ParseRRClass(s string) RRClass {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c, name := range rrClassNames {
		if name == s {
			return c
		}
	}
	return 0
}
