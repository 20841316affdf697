package rrdata

import (
	"fmt"

	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// Decode decodes a record value based on its type, from its binary representation.
func Decode(rrType domain.RRType, data []byte) (string, error) {
	switch rrType {
	case domain.RRTypeA: // 1
		return decodeAData(data)
	case domain.RRTypeNS: // 2
		return decodeNSData(data)
	case domain.RRTypeCNAME: // 5
		return decodeCNAMEData(data)
	case domain.RRTypeSOA: // 6
		return decodeSOAData(data)
	case domain.RRTypePTR: // 12
		return decodePTRData(data)
	case domain.RRTypeMX: // 15
		return decodeMXData(data)
	case domain.RRTypeTXT: // 16
		return decodeTXTData(data)
	case domain.RRTypeAAAA: // 28
		return decodeAAAAData(data)
	case domain.RRTypeSRV: // 33
		return decodeSRVData(data)
	case domain.RRTypeCAA: // 257
		return decodeCAAData(data)
	default:
		return "", fmt.Errorf("%s record decoding not supported", rrType)
	}
}

// NewRecord builds a ResourceRecord from presentation text, deriving the
// wire rdata with Encode.
func NewRecord(name string, rrType domain.RRType, class domain.RRClass, ttl uint32, text string) (domain.ResourceRecord, error) {
	data, err := Encode(rrType, text)
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	return domain.NewResourceRecord(name, rrType, class, ttl, data, text)
}
