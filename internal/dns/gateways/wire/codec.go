// Package wire converts between DNS messages as parsed by miekg/dns and the
// domain types the resolver works with.
package wire

import (
	"errors"
	"fmt"

	"github.com/miekg/dns"

	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/common/utils"
	"github.com/awesome-nfv/shuke/internal/dns/domain"
)

// EDNSBufferSize is the UDP payload size advertised in EDNS0 replies.
const EDNSBufferSize = 1232

var (
	// ErrFormat marks a query that cannot be answered as asked (FORMERR).
	ErrFormat = errors.New("malformed query")
	// ErrNotImplemented marks an opcode the server does not support (NOTIMP).
	ErrNotImplemented = errors.New("opcode not implemented")
)

type DNSCodec interface {
	// DecodeQuery extracts the single question of a standard query.
	DecodeQuery(req *dns.Msg) (domain.Question, error)
	// EncodeResponse builds the reply to req carrying resp.
	EncodeResponse(req *dns.Msg, resp domain.Response) (*dns.Msg, error)
}

type codec struct {
	logger log.Logger
}

// NewCodec returns the message codec. A nil logger discards output.
func NewCodec(logger log.Logger) DNSCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &codec{logger: logger}
}

func (c *codec) DecodeQuery(req *dns.Msg) (domain.Question, error) {
	if req == nil {
		return domain.Question{}, fmt.Errorf("%w: empty message", ErrFormat)
	}
	if req.Response {
		return domain.Question{}, fmt.Errorf("%w: message is a response", ErrFormat)
	}
	if req.Opcode != dns.OpcodeQuery {
		return domain.Question{}, fmt.Errorf("%w: %s", ErrNotImplemented, dns.OpcodeToString[req.Opcode])
	}
	if len(req.Question) != 1 {
		return domain.Question{}, fmt.Errorf("%w: expected 1 question, got %d", ErrFormat, len(req.Question))
	}

	q := req.Question[0]
	// Type and class are checked by the resolver, which refuses what it cannot serve.
	return domain.Question{
		ID:    req.Id,
		Name:  utils.CanonicalDNSName(q.Name),
		Type:  domain.RRType(q.Qtype),
		Class: domain.RRClass(q.Qclass),
	}, nil
}

func (c *codec) EncodeResponse(req *dns.Msg, resp domain.Response) (*dns.Msg, error) {
	if req == nil {
		return nil, errors.New("encode response: nil request")
	}
	m := new(dns.Msg)
	m.SetRcode(req, int(resp.RCode()))
	m.Authoritative = resp.Authoritative
	m.RecursionAvailable = false

	var err error
	if m.Answer, err = c.toRRs(resp.Answers); err != nil {
		return nil, fmt.Errorf("encode answer section: %w", err)
	}
	if m.Ns, err = c.toRRs(resp.Authority); err != nil {
		return nil, fmt.Errorf("encode authority section: %w", err)
	}
	if m.Extra, err = c.toRRs(resp.Additional); err != nil {
		return nil, fmt.Errorf("encode additional section: %w", err)
	}

	if opt := req.IsEdns0(); opt != nil {
		m.SetEdns0(EDNSBufferSize, opt.Do())
	}
	return m, nil
}

func (c *codec) toRRs(rrs []domain.ResourceRecord) ([]dns.RR, error) {
	if len(rrs) == 0 {
		return nil, nil
	}
	out := make([]dns.RR, 0, len(rrs))
	for _, rr := range rrs {
		converted, err := ToRR(rr)
		if err != nil {
			c.logger.Error(map[string]any{
				"name":  rr.Name(),
				"type":  rr.Type().String(),
				"error": err.Error(),
			}, "Failed to convert record to wire format")
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// ToRR rebuilds a miekg/dns record from the stored wire rdata of rr.
func ToRR(rr domain.ResourceRecord) (dns.RR, error) {
	data := rr.Data()
	if len(data) > 0xFFFF {
		return nil, fmt.Errorf("rdata too long for %s: %d bytes", rr.Name(), len(data))
	}
	hdr := dns.RR_Header{
		Name:     dns.Fqdn(rr.Name()),
		Rrtype:   uint16(rr.Type()),
		Class:    uint16(rr.Class()),
		Ttl:      rr.TTL(),
		Rdlength: uint16(len(data)),
	}
	out, off, err := dns.UnpackRRWithHeader(hdr, data, 0)
	if err != nil {
		return nil, fmt.Errorf("unpack %s %s: %w", rr.Name(), rr.Type(), err)
	}
	if off != len(data) {
		return nil, fmt.Errorf("unpack %s %s: %d trailing bytes", rr.Name(), rr.Type(), len(data)-off)
	}
	return out, nil
}
