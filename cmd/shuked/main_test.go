package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awesome-nfv/shuke/internal/dns/common/procutil"
	"github.com/awesome-nfv/shuke/internal/dns/config"
)

const exampleZone = `$ORIGIN example.com.
$TTL 300
@          IN SOA   ns1 hostmaster 2024010101 3600 600 86400 300
           IN NS    ns1
           IN MX    10 mail
ns1        IN A     127.0.0.1
mail       IN A     192.0.2.25
www        IN A     192.0.2.10
www        IN A     192.0.2.11
alias      IN CNAME www
loop1      IN CNAME loop2
loop2      IN CNAME loop1
*.wild     IN A     192.0.2.99
a.b        IN TXT   "deep"
sub        IN NS    ns1.sub
ns1.sub    IN A     192.0.2.53
`

const e2eYAML = `zone_root: e2e.test
"@":
  SOA: "ns1.e2e.test hostmaster.e2e.test 1 3600 600 86400 300"
api:
  A: "10.0.0.1"
web:
  A:
    - "10.0.0.2"
    - "10.0.0.3"
`

type testServer struct {
	app  *Application
	addr string
	done chan error
	stop context.CancelFunc

	once    sync.Once
	runErr  error
	stopped bool
}

func writeZone(t *testing.T, dir, name, text string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
}

func zoneDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeZone(t, dir, "example.com.zone", exampleZone)
	writeZone(t, dir, "e2e.yaml", e2eYAML)
	return dir
}

// loadConfig points the server at dir on a free loopback port.
func loadConfig(t *testing.T, dir string, env map[string]string) *config.AppConfig {
	t.Helper()
	port, err := procutil.FreePort()
	require.NoError(t, err)

	t.Setenv("SHUKE_ADDRESS", "127.0.0.1")
	t.Setenv("SHUKE_PORT", strconv.Itoa(port))
	t.Setenv("SHUKE_ZONE_DIR", dir)
	t.Setenv("SHUKE_LOG_LEVEL", "debug")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func startServer(t *testing.T, cfg *config.AppConfig) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	app, err := buildApplication(ctx, cfg)
	if err != nil {
		cancel()
		require.NoError(t, err)
	}

	s := &testServer{app: app, addr: cfg.ListenAddr(), done: make(chan error, 1), stop: cancel}
	go func() { s.done <- app.Run(ctx) }()
	t.Cleanup(s.shutdown)

	require.Eventually(t, func() bool {
		c := &dns.Client{Net: "tcp", Timeout: 200 * time.Millisecond}
		_, _, err := c.Exchange(new(dns.Msg).SetQuestion("example.com.", dns.TypeSOA), s.addr)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond, "server did not start")
	return s
}

// shutdown cancels the server and waits for Run to return. It is safe to call twice.
func (s *testServer) shutdown() {
	s.once.Do(func() {
		s.stop()
		select {
		case s.runErr = <-s.done:
			s.stopped = true
		case <-time.After(15 * time.Second):
		}
	})
}

func ask(t *testing.T, network, addr, name string, qtype uint16) *dns.Msg {
	t.Helper()
	c := &dns.Client{Net: network, Timeout: 2 * time.Second}
	reply, _, err := c.Exchange(new(dns.Msg).SetQuestion(dns.Fqdn(name), qtype), addr)
	require.NoError(t, err)
	return reply
}

func TestApplication_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := loadConfig(t, zoneDir(t), nil)
	s := startServer(t, cfg)
	assert.Equal(t, []string{"e2e.test", "example.com"}, s.app.zoneCache.Zones())

	reply := ask(t, "udp", s.addr, "www.example.com", dns.TypeA)
	assert.Equal(t, dns.RcodeSuccess, reply.Rcode)
	assert.Len(t, reply.Answer, 2)

	s.shutdown()
	require.True(t, s.stopped, "Run did not return after cancel")
	assert.NoError(t, s.runErr)
	assert.Equal(t, 0, s.app.zoneCache.Count(), "shutdown releases the published zones")
}

func TestApplication_Reload(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := zoneDir(t)
	s := startServer(t, loadConfig(t, dir, nil))

	assert.Equal(t, dns.RcodeRefused, ask(t, "udp", s.addr, "www.example.org", dns.TypeA).Rcode)

	writeZone(t, dir, "example.org.zone", "$ORIGIN example.org.\n@ 300 IN SOA ns1 hm 1 1 1 1 1\nwww 300 IN A 198.51.100.1\n")
	require.NoError(t, s.app.Reload(context.Background()))
	reply := ask(t, "udp", s.addr, "www.example.org", dns.TypeA)
	assert.Equal(t, dns.RcodeSuccess, reply.Rcode)
	require.Len(t, reply.Answer, 1)

	// A broken file fails the reload and the old zones keep serving.
	writeZone(t, dir, "broken.zone", "$ORIGIN broken.test.\nwww 300 IN A 192.0.2.1\n")
	assert.Error(t, s.app.Reload(context.Background()))
	assert.Equal(t, dns.RcodeSuccess, ask(t, "udp", s.addr, "www.example.org", dns.TypeA).Rcode)
}

func TestApplication_WatchZones(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := zoneDir(t)
	s := startServer(t, loadConfig(t, dir, map[string]string{"SHUKE_WATCH_ZONES": "true"}))

	text := []byte("$ORIGIN example.net.\n@ 300 IN SOA ns1 hm 1 1 1 1 1\nwww 300 IN A 203.0.113.1\n")
	c := &dns.Client{Net: "udp", Timeout: time.Second}
	require.Eventually(t, func() bool {
		if err := os.WriteFile(filepath.Join(dir, "example.net.zone"), text, 0o644); err != nil {
			return false
		}
		reply, _, err := c.Exchange(new(dns.Msg).SetQuestion("www.example.net.", dns.TypeA), s.addr)
		return err == nil && reply.Rcode == dns.RcodeSuccess
	}, 10*time.Second, 200*time.Millisecond)
}

func TestApplication_BoltStoreSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "zones.db")
	env := map[string]string{"SHUKE_STORE_BACKEND": "bolt", "SHUKE_STORE_PATH": dbPath}

	first := startServer(t, loadConfig(t, zoneDir(t), env))
	first.shutdown()

	// With the zone directory gone the persisted zones are served.
	cfg := loadConfig(t, filepath.Join(t.TempDir(), "missing"), env)
	second := startServer(t, cfg)
	reply := ask(t, "tcp", second.addr, "api.e2e.test", dns.TypeA)
	assert.Equal(t, dns.RcodeSuccess, reply.Rcode)
	require.Len(t, reply.Answer, 1)
	assert.Equal(t, "10.0.0.1", reply.Answer[0].(*dns.A).A.String())
}

func TestBuildApplication_MissingZoneDirWithMemoryStore(t *testing.T) {
	cfg := loadConfig(t, filepath.Join(t.TempDir(), "missing"), nil)
	_, err := buildApplication(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load zone directory")
}

func TestBuildApplication_CacheDisabled(t *testing.T) {
	cfg := loadConfig(t, zoneDir(t), map[string]string{"SHUKE_DISABLE_CACHE": "true", "SHUKE_TRANSPORTS": "udp"})
	app, err := buildApplication(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.store.Close() })
	assert.Len(t, app.transports, 1)
}

func TestBuildStore(t *testing.T) {
	cfg := &config.AppConfig{StoreBackend: "memory"}
	store, err := buildStore(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cfg = &config.AppConfig{StoreBackend: "bolt", StorePath: filepath.Join(t.TempDir(), "z.db")}
	store, err = buildStore(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = buildStore(&config.AppConfig{StoreBackend: "redis"}, nil)
	assert.Error(t, err)
}

func TestRun_BuildFailureRemovesPIDFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "shuked.pid")
	cfg := loadConfig(t, filepath.Join(t.TempDir(), "missing"), map[string]string{"SHUKE_PID_FILE": pidFile})

	err := run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build application")
	assert.NoFileExists(t, pidFile)
}
