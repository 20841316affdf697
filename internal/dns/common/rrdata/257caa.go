package rrdata

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeCAAData encodes a CAA record string into its binary representation.
func encodeCAAData(data string) ([]byte, error) {
	// data = "0 issue \"letsencrypt.org\""
	parts := strings.Fields(data)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid CAA record format (expected: flag tag \"value\"): %s", data)
	}

	flag, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid CAA flag: %v", err)
	}

	tag := parts[1]
	if len(tag) == 0 || len(tag) > 255 {
		return nil, fmt.Errorf("invalid CAA tag length: %d", len(tag))
	}

	rawValue := strings.Join(parts[2:], " ")
	value := strings.Trim(rawValue, "\"")

	encoded := []byte{byte(flag), byte(len(tag))}
	encoded = append(encoded, tag...)
	encoded = append(encoded, value...)
	return encoded, nil
}

// decodeCAAData decodes the binary representation of a CAA record into its string format.
func decodeCAAData(data []byte) (string, error) {
	if len(data) < 2 {
		return "", fmt.Errorf("invalid CAA record length: %d", len(data))
	}

	flag := data[0]
	tagLen := int(data[1])
	if tagLen == 0 || len(data) < 2+tagLen {
		return "", fmt.Errorf("invalid CAA tag length: %d", tagLen)
	}
	tag := string(data[2 : 2+tagLen])

	// The value is opaque (a CA domain or a URI) and is never canonicalized.
	value := string(data[2+tagLen:])

	return fmt.Sprintf("%d %s \"%s\"", flag, tag, value), nil
}
