package domain

import "fmt"

// RCode represents a DNS response code indicating the result of a query.
type RCode uint8

// Response codes from RFC 1035 and RFC 2136.
const (
	NOERROR  RCode = 0
	FORMERR  RCode = 1
	SERVFAIL RCode = 2
	NXDOMAIN RCode = 3
	NOTIMP   RCode = 4
	REFUSED  RCode = 5
	YXDOMAIN RCode = 6
	YXRRSET  RCode = 7
	NXRRSET  RCode = 8
	NOTAUTH  RCode = 9
	NOTZONE  RCode = 10
)

var rcodeNames = [...]string{
	NOERROR:  "NOERROR",
	FORMERR:  "FORMERR",
	SERVFAIL: "SERVFAIL",
	NXDOMAIN: "NXDOMAIN",
	NOTIMP:   "NOTIMP",
	REFUSED:  "REFUSED",
	YXDOMAIN: "YXDOMAIN",
	YXRRSET:  "YXRRSET",
	NXRRSET:  "NXRRSET",
	NOTAUTH:  "NOTAUTH",
	NOTZONE:  "NOTZONE",
}

// IsValid returns true if the RCode is within the supported response code range.
func (r RCode) IsValid() bool {
	return int(r) < len(rcodeNames)
}

// String returns the textual representation of the RCode.
func (r RCode) String() string {
	if r.IsValid() {
		return rcodeNames[r]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(r))
}

// ParseRCode converts a string name to an RCode value.
// Unknown names map to NOERROR.
func ParseRCode(s string) RCode {
	for i, name := range rcodeNames {
		if name == s {
			return RCode(i)
		}
	}
	return NOERROR
}
