package zone

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/awesome-nfv/shuke/internal/dns/common/rrdata"
	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// ParseOptions controls how master-file text is parsed.
type ParseOptions struct {
	// Origin is the initial origin for relative names. A $ORIGIN directive in
	// the text takes precedence. When both are empty the SOA owner becomes
	// the zone origin and relative names are rejected.
	Origin string
	// Source names the input in errors, typically the file path.
	Source string
	// DefaultTTL applies to records without an explicit TTL when the text
	// has no $TTL directive. Zero means the package DefaultTTL.
	DefaultTTL uint32
}

// Parse reads RFC 1035 master-file text ($ORIGIN, $TTL, owner inheritance,
// comments) and returns the validated Zone. Malformed text yields a
// *domain.ParseError; well-formed text that breaks a zone invariant yields a
// *domain.ValidationError.
func Parse(text string, opts ParseOptions) (domain.Zone, error) {
	directive, err := scanOrigin(text, opts.Source)
	if err != nil {
		return domain.Zone{}, err
	}

	initial := opts.Origin
	if directive != "" {
		initial = directive
	}
	if initial != "" {
		initial = dns.Fqdn(utils.CanonicalDNSName(initial))
	}

	zp := dns.NewZoneParser(strings.NewReader(text), initial, opts.Source)
	zp.SetDefaultTTL(cmp.Or(opts.DefaultTTL, DefaultTTL))

	var (
		records []domain.ResourceRecord
		soa     string
	)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		rec, err := fromDNS(rr)
		if err != nil {
			return domain.Zone{}, &domain.ParseError{
				Source: opts.Source,
				Reason: fmt.Sprintf("record %q", rr.Header().Name),
				Err:    err,
			}
		}
		if rec.Type() == domain.RRTypeSOA && soa == "" {
			soa = rec.Name()
		}
		records = append(records, rec)
	}
	if err := zp.Err(); err != nil {
		return domain.Zone{}, &domain.ParseError{
			Source: opts.Source,
			Line:   lineOf(err),
			Reason: "malformed zone text",
			Err:    err,
		}
	}

	if soa == "" {
		return domain.Zone{}, &domain.ParseError{Source: opts.Source, Reason: "cannot build zone", Err: domain.ErrMissingSOA}
	}

	origin := initial
	if origin == "" {
		origin = soa
	}
	return domain.NewZone(origin, records)
}

// scanOrigin returns the value of the single $ORIGIN directive in text, or ""
// when there is none. More than one directive is a parse error.
func scanOrigin(text, source string) (string, error) {
	var (
		origin string
		seen   int
	)
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 || !strings.EqualFold(fields[0], "$ORIGIN") {
			continue
		}
		seen++
		if seen > 1 {
			return "", &domain.ParseError{Source: source, Line: line, Reason: "multiple $ORIGIN directives"}
		}
		if len(fields) != 2 {
			return "", &domain.ParseError{Source: source, Line: line, Reason: "$ORIGIN takes exactly one name"}
		}
		origin = fields[1]
	}
	if err := sc.Err(); err != nil {
		return "", &domain.ParseError{Source: source, Reason: "reading zone text", Err: err}
	}
	return origin, nil
}

// stripComment drops a trailing ';' comment that is not inside quotes.
func stripComment(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return line[:i]
			}
		}
	}
	return line
}

// lineOf extracts the line number from a miekg/dns parse error, or 0.
func lineOf(err error) int {
	var pe *dns.ParseError
	if !errors.As(err, &pe) {
		return 0
	}
	msg := pe.Error()
	i := strings.Index(msg, "at line: ")
	if i < 0 {
		return 0
	}
	rest := msg[i+len("at line: "):]
	if j := strings.IndexByte(rest, ':'); j >= 0 {
		rest = rest[:j]
	}
	n, _ := strconv.Atoi(rest)
	return n
}

// fromDNS converts a parsed record into a domain record. Only the record
// types the server answers for are accepted.
func fromDNS(rr dns.RR) (domain.ResourceRecord, error) {
	var (
		rrtype domain.RRType
		text   string
	)
	switch v := rr.(type) {
	case *dns.A:
		rrtype, text = domain.RRTypeA, v.A.String()
	case *dns.AAAA:
		rrtype, text = domain.RRTypeAAAA, v.AAAA.String()
	case *dns.NS:
		rrtype, text = domain.RRTypeNS, nameText(v.Ns)
	case *dns.CNAME:
		rrtype, text = domain.RRTypeCNAME, nameText(v.Target)
	case *dns.PTR:
		rrtype, text = domain.RRTypePTR, nameText(v.Ptr)
	case *dns.MX:
		rrtype = domain.RRTypeMX
		text = fmt.Sprintf("%d %s", v.Preference, nameText(v.Mx))
	case *dns.SOA:
		rrtype = domain.RRTypeSOA
		text = fmt.Sprintf("%s %s %d %d %d %d %d",
			nameText(v.Ns), nameText(v.Mbox), v.Serial, v.Refresh, v.Retry, v.Expire, v.Minttl)
	case *dns.TXT:
		rrtype = domain.RRTypeTXT
		quoted := make([]string, len(v.Txt))
		for i, s := range v.Txt {
			quoted[i] = `"` + s + `"`
		}
		text = strings.Join(quoted, " ")
	case *dns.SRV:
		rrtype = domain.RRTypeSRV
		text = fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, nameText(v.Target))
	case *dns.CAA:
		rrtype = domain.RRTypeCAA
		text = fmt.Sprintf("%d %s \"%s\"", v.Flag, v.Tag, v.Value)
	default:
		return domain.ResourceRecord{}, fmt.Errorf("unsupported record type %s", dns.TypeToString[rr.Header().Rrtype])
	}

	hdr := rr.Header()
	return rrdata.NewRecord(hdr.Name, rrtype, domain.RRClass(hdr.Class), hdr.Ttl, text)
}

func nameText(name string) string {
	if n := utils.CanonicalDNSName(name); n != "" {
		return n
	}
	return "."
}
