package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRRType_StringAndParse(t *testing.T) {
	tests := []struct {
		rrtype RRType
		name   string
	}{
		{RRTypeA, "A"},
		{RRTypeNS, "NS"},
		{RRTypeCNAME, "CNAME"},
		{RRTypeSOA, "SOA"},
		{RRTypePTR, "PTR"},
		{RRTypeMX, "MX"},
		{RRTypeTXT, "TXT"},
		{RRTypeAAAA, "AAAA"},
		{RRTypeSRV, "SRV"},
		{RRTypeOPT, "OPT"},
		{RRTypeANY, "ANY"},
		{RRTypeCAA, "CAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.rrtype.IsValid())
			assert.Equal(t, tt.name, tt.rrtype.String())
			assert.Equal(t, tt.rrtype, RRTypeFromString(tt.name))
		})
	}

	assert.Equal(t, RRTypeMX, RRTypeFromString(" mx "))
	assert.Equal(t, RRType(0), RRTypeFromString("BOGUS"))
	assert.False(t, RRType(9999).IsValid())
	assert.Equal(t, "UNKNOWN(9999)", RRType(9999).String())
}

func TestRRType_ZoneDataAndQueryable(t *testing.T) {
	assert.True(t, RRTypeA.IsZoneData())
	assert.True(t, RRTypeSOA.IsZoneData())
	assert.False(t, RRTypeANY.IsZoneData())
	assert.False(t, RRTypeOPT.IsZoneData())

	assert.True(t, RRTypeANY.IsQueryable())
	assert.False(t, RRTypeOPT.IsQueryable())
	assert.False(t, RRType(0).IsQueryable())
}

func TestRRClass(t *testing.T) {
	for _, c := range []RRClass{RRClassIN, RRClassCH, RRClassHS, RRClassNONE, RRClassANY} {
		assert.True(t, c.IsValid(), c.String())
		assert.Equal(t, c, ParseRRClass(c.String()))
	}
	assert.Equal(t, RRClassIN, ParseRRClass("in"))
	assert.Equal(t, RRClass(0), ParseRRClass("XX"))
	assert.Equal(t, "UNKNOWN", RRClass(42).String())

	assert.True(t, RRClassIN.Matches(RRClassIN))
	assert.True(t, RRClassANY.Matches(RRClassIN))
	assert.False(t, RRClassCH.Matches(RRClassIN))
}

func TestRCode(t *testing.T) {
	tests := map[RCode]string{
		NOERROR:  "NOERROR",
		FORMERR:  "FORMERR",
		SERVFAIL: "SERVFAIL",
		NXDOMAIN: "NXDOMAIN",
		NOTIMP:   "NOTIMP",
		REFUSED:  "REFUSED",
		NOTZONE:  "NOTZONE",
	}
	for code, name := range tests {
		assert.True(t, code.IsValid())
		assert.Equal(t, name, code.String())
		assert.Equal(t, code, ParseRCode(name))
	}
	assert.False(t, RCode(11).IsValid())
	assert.Equal(t, "UNKNOWN(11)", RCode(11).String())
	assert.Equal(t, NOERROR, ParseRCode("nonsense"))
}
