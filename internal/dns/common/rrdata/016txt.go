package rrdata

import (
	"fmt"
	"strings"
)

// encodeTXTData encodes TXT presentation text into one or more
// length-prefixed character-strings (RFC 1035 section 3.3.14).
// Quoted segments may contain spaces and the escapes \" \\ and \DDD;
// unquoted words are taken as one segment each.
func encodeTXTData(data string) ([]byte, error) {
	segments, err := splitCharacterStrings(data)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("TXT record must contain at least one segment")
	}
	var encoded []byte
	for _, segment := range segments {
		if len(segment) > 255 {
			return nil, fmt.Errorf("TXT segment too long: %d bytes", len(segment))
		}
		encoded = append(encoded, byte(len(segment)))
		encoded = append(encoded, segment...)
	}
	return encoded, nil
}

func decodeTXTData(b []byte) (string, error) {
	if len(b) == 0 {
		return "", fmt.Errorf("empty TXT data")
	}
	var segments []string
	for i := 0; i < len(b); {
		n := int(b[i])
		i++
		if i+n > len(b) {
			return "", fmt.Errorf("TXT segment overruns rdata")
		}
		segments = append(segments, quoteCharacterString(b[i:i+n]))
		i += n
	}
	return strings.Join(segments, " "), nil
}

func splitCharacterStrings(s string) ([]string, error) {
	var out []string
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '"':
			seg, n, err := readQuoted(s[i+1:])
			if err != nil {
				return nil, err
			}
			out = append(out, seg)
			i += n + 1
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' {
				j++
			}
			out = append(out, s[i:j])
			i = j
		}
	}
	return out, nil
}

// readQuoted unescapes s up to its closing quote and returns the segment and
// the number of bytes consumed, closing quote included.
func readQuoted(s string) (string, int, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			return sb.String(), i + 1, nil
		case '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("dangling escape in TXT data")
			}
			if isDigit(s[i+1]) {
				if i+3 >= len(s) || !isDigit(s[i+2]) || !isDigit(s[i+3]) {
					return "", 0, fmt.Errorf("malformed \\DDD escape in TXT data")
				}
				v := int(s[i+1]-'0')*100 + int(s[i+2]-'0')*10 + int(s[i+3]-'0')
				if v > 255 {
					return "", 0, fmt.Errorf("\\DDD escape out of range: %d", v)
				}
				sb.WriteByte(byte(v))
				i += 3
				continue
			}
			sb.WriteByte(s[i+1])
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated quoted string in TXT data")
}

func quoteCharacterString(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < ' ' || c > '~':
			fmt.Fprintf(&sb, "\\%03d", c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
