package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/gateways/wire"
	"github.com/awesome-nfv/shuke/internal/dns/services/resolver"
)

const (
	// RequestTimeout bounds the time spent answering one query.
	RequestTimeout = 2 * time.Second
	shutdownWait   = 5 * time.Second
)

// DNSTransport serves DNS over UDP or TCP with a miekg/dns server. It decodes
// each request into a domain question, hands it to the service layer and
// encodes the answer.
type DNSTransport struct {
	kind   TransportType
	addr   string
	codec  wire.DNSCodec
	logger log.Logger

	mu      sync.Mutex
	server  *dns.Server
	bound   string
	running bool
}

// NewDNSTransport creates a transport of the given kind (udp or tcp).
func NewDNSTransport(kind TransportType, addr string, codec wire.DNSCodec, logger log.Logger) *DNSTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if codec == nil {
		codec = wire.NewCodec(logger)
	}
	return &DNSTransport{kind: kind, addr: addr, codec: codec, logger: logger}
}

// Start binds the listener and serves requests in the background. Cancelling
// ctx stops the transport.
func (t *DNSTransport) Start(ctx context.Context, handler resolver.RequestHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("%s transport already running", t.kind)
	}

	server := &dns.Server{
		Net:     string(t.kind),
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) { t.serveDNS(ctx, w, req, handler) }),
		UDPSize: dns.MaxMsgSize,
	}
	switch t.kind {
	case TransportUDP:
		pc, err := net.ListenPacket("udp", t.addr)
		if err != nil {
			return fmt.Errorf("failed to bind UDP socket on %s: %w", t.addr, err)
		}
		server.PacketConn = pc
		t.bound = pc.LocalAddr().String()
	case TransportTCP:
		ln, err := net.Listen("tcp", t.addr)
		if err != nil {
			return fmt.Errorf("failed to bind TCP listener on %s: %w", t.addr, err)
		}
		server.Listener = ln
		t.bound = ln.Addr().String()
	default:
		return fmt.Errorf("unsupported transport type: %s", t.kind)
	}

	started := make(chan struct{})
	failed := make(chan error, 1)
	server.NotifyStartedFunc = func() { close(started) }
	go func() {
		if err := server.ActivateAndServe(); err != nil {
			failed <- err
		}
	}()

	select {
	case <-started:
	case err := <-failed:
		return fmt.Errorf("%s transport failed to start: %w", t.kind, err)
	}

	t.server = server
	t.running = true

	t.logger.Info(map[string]any{
		"transport": string(t.kind),
		"address":   t.bound,
	}, "DNS transport started")

	go func() {
		<-ctx.Done()
		if err := t.Stop(); err != nil {
			t.logger.Warn(map[string]any{"transport": string(t.kind), "error": err.Error()}, "Error stopping transport")
		}
	}()
	return nil
}

// Stop gracefully shuts down the transport. Stopping a stopped transport is a no-op.
func (t *DNSTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	t.running = false

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	err := t.server.ShutdownContext(ctx)
	if err != nil {
		t.logger.Warn(map[string]any{
			"transport": string(t.kind),
			"error":     err.Error(),
		}, "Error shutting down DNS server")
	}

	t.logger.Info(map[string]any{
		"transport": string(t.kind),
		"address":   t.bound,
	}, "DNS transport stopped")
	return err
}

// Address returns the bound address once started, otherwise the configured one.
func (t *DNSTransport) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bound != "" {
		return t.bound
	}
	return t.addr
}

// serveDNS handles a single request.
func (t *DNSTransport) serveDNS(ctx context.Context, w dns.ResponseWriter, req *dns.Msg, handler resolver.RequestHandler) {
	client := w.RemoteAddr()

	query, err := t.codec.DecodeQuery(req)
	if err != nil {
		t.logger.Warn(map[string]any{
			"client": addrString(client),
			"error":  err.Error(),
		}, "Failed to decode DNS query")
		t.write(w, errorReply(req, err), client)
		return
	}

	qctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	response := handler.HandleQuery(qctx, query, client)

	reply, err := t.codec.EncodeResponse(req, response)
	if err != nil {
		t.logger.Error(map[string]any{
			"client":   addrString(client),
			"query_id": query.ID,
			"error":    err.Error(),
		}, "Failed to encode DNS response")
		reply = new(dns.Msg).SetRcode(req, dns.RcodeServerFailure)
	}

	if t.kind == TransportUDP {
		size := dns.MinMsgSize
		if opt := req.IsEdns0(); opt != nil && int(opt.UDPSize()) > size {
			size = int(opt.UDPSize())
		}
		reply.Truncate(size)
	}

	t.write(w, reply, client)
	t.logger.Debug(map[string]any{
		"client":    addrString(client),
		"query_id":  query.ID,
		"rcode":     dns.RcodeToString[reply.Rcode],
		"answers":   len(reply.Answer),
		"truncated": reply.Truncated,
	}, "Sent DNS response")
}

func (t *DNSTransport) write(w dns.ResponseWriter, m *dns.Msg, client net.Addr) {
	if err := w.WriteMsg(m); err != nil {
		t.logger.Error(map[string]any{
			"client": addrString(client),
			"error":  err.Error(),
		}, "Failed to send DNS response")
	}
}

// errorReply maps a decode failure onto NOTIMP or FORMERR.
func errorReply(req *dns.Msg, err error) *dns.Msg {
	m := new(dns.Msg)
	if req == nil {
		m.Rcode = dns.RcodeFormatError
		return m
	}
	if errors.Is(err, wire.ErrNotImplemented) {
		return m.SetRcode(req, dns.RcodeNotImplemented)
	}
	return m.SetRcodeFormatError(req)
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
