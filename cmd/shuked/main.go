package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awesome-nfv/shuke/internal/dns/common/clock"
	"github.com/awesome-nfv/shuke/internal/dns/common/log"
	"github.com/awesome-nfv/shuke/internal/dns/common/procutil"
	"github.com/awesome-nfv/shuke/internal/dns/config"
	"github.com/awesome-nfv/shuke/internal/dns/gateways/transport"
	"github.com/awesome-nfv/shuke/internal/dns/gateways/wire"
	"github.com/awesome-nfv/shuke/internal/dns/repos/dnscache"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonecache"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonestore"
	"github.com/awesome-nfv/shuke/internal/dns/repos/zonestore/bolt"
	"github.com/awesome-nfv/shuke/internal/dns/services/resolver"
	"github.com/awesome-nfv/shuke/internal/dns/services/zonemgr"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "shuked"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the DNS server
type Application struct {
	config     *config.AppConfig
	store      zonestore.Store
	zoneCache  *zonecache.ZoneCache
	manager    *zonemgr.Manager
	resolver   *resolver.Resolver
	transports []resolver.ServerTransport
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.LogLevel,
		"address":       cfg.ListenAddr(),
		"transports":    cfg.Transports,
		"zone_dir":      cfg.ZoneDir,
		"store_backend": cfg.StoreBackend,
		"cache_size":    cfg.CacheSize,
	}, "Starting "+appName)

	if err := run(cfg); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, appName+" failed")
	}
	log.Info(nil, appName+" stopped gracefully")
}

// run owns the process lifecycle after configuration: pidfile, application,
// signals. Every exit path returns so deferred cleanup runs.
func run(cfg *config.AppConfig) error {
	if cfg.PIDFile != "" {
		if err := procutil.WritePIDFile(cfg.PIDFile); err != nil {
			return fmt.Errorf("failed to write pidfile: %w", err)
		}
		defer func() {
			if err := procutil.RemovePIDFile(cfg.PIDFile); err != nil {
				log.Warn(map[string]any{"error": err.Error()}, "Failed to remove pidfile")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		for sig := range sigChan {
			if sig == syscall.SIGHUP {
				log.Info(map[string]any{"signal": sig.String()}, "Reload signal received")
				if err := app.Reload(ctx); err != nil {
					log.Error(map[string]any{"error": err.Error()}, "Zone reload failed; keeping previous zones")
				}
				continue
			}
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
			return
		}
	}()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildApplication constructs all components, wires them together and
// publishes the initial zones.
func buildApplication(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	clk := clock.RealClock{}
	logger := log.GetLogger()

	store, err := buildStore(cfg, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to build zone store: %w", err)
	}

	var cache resolver.Cache
	var purger zonemgr.Purger
	if cfg.DisableCache {
		log.Info(map[string]any{"disabled": true}, "DNS response caching disabled")
	} else {
		cacheSize := cfg.CacheSize
		if cacheSize > uint(^uint(0)>>1) {
			_ = store.Close()
			return nil, fmt.Errorf("cache size too large: %d (max %d)", cacheSize, ^uint(0)>>1)
		}
		lru, err := dnscache.New(int(cacheSize))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
		cache, purger = lru, lru
		log.Info(map[string]any{
			"type": "LRU",
			"size": cfg.CacheSize,
		}, "DNS response cache configured")
	}

	zoneCache := zonecache.New()
	manager, err := zonemgr.New(zonemgr.Options{
		Store:      store,
		Zones:      zoneCache,
		Cache:      purger,
		Clock:      clk,
		Logger:     logger,
		DefaultTTL: cfg.DefaultTTL,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	if err := loadInitialZones(ctx, cfg, manager); err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info(map[string]any{
		"zones":   zoneCache.Zones(),
		"records": zoneCache.Count(),
	}, "Serving zones")

	resolverService := resolver.NewResolver(resolver.ResolverOptions{
		Cache:         cache,
		Clock:         clk,
		Logger:        logger,
		MaxCNAMEChase: cfg.MaxCNAMEChase,
		ZoneCache:     zoneCache,
	})

	codec := wire.NewCodec(logger)
	transports := make([]resolver.ServerTransport, 0, len(cfg.Transports))
	for _, kind := range cfg.Transports {
		tr, err := transport.NewTransport(transport.TransportType(kind), cfg.ListenAddr(), codec, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		transports = append(transports, tr)
	}

	return &Application{
		config:     cfg,
		store:      store,
		zoneCache:  zoneCache,
		manager:    manager,
		resolver:   resolverService,
		transports: transports,
	}, nil
}

func buildStore(cfg *config.AppConfig, clk clock.Clock) (zonestore.Store, error) {
	switch cfg.StoreBackend {
	case "bolt":
		return bolt.New(cfg.StorePath, clk)
	case "memory", "":
		return zonestore.NewMemory(clk), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// loadInitialZones publishes the zone directory. When the directory cannot be
// loaded, a persistent store serves what it last held.
func loadInitialZones(ctx context.Context, cfg *config.AppConfig, manager *zonemgr.Manager) error {
	err := manager.ReloadDirectory(ctx, cfg.ZoneDir)
	if err == nil {
		return nil
	}
	if cfg.StoreBackend != "bolt" {
		return fmt.Errorf("failed to load zone directory: %w", err)
	}
	log.Warn(map[string]any{
		"zone_dir": cfg.ZoneDir,
		"error":    err.Error(),
	}, "Zone directory unavailable; serving zones from store")
	return manager.Init(ctx)
}

// Reload re-reads the zone directory; on failure the current zones keep serving.
func (app *Application) Reload(ctx context.Context) error {
	return app.manager.ReloadDirectory(ctx, app.config.ZoneDir)
}

// Run starts the DNS server and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	var started []resolver.ServerTransport
	for _, tr := range app.transports {
		if err := tr.Start(ctx, app.resolver); err != nil {
			stopAll(started)
			_ = app.store.Close()
			return fmt.Errorf("failed to start transport: %w", err)
		}
		started = append(started, tr)
		log.Info(map[string]any{"address": tr.Address()}, "DNS server started")
	}

	if app.config.WatchZones {
		go func() {
			if err := app.manager.Watch(ctx, app.config.ZoneDir); err != nil {
				log.Error(map[string]any{"error": err.Error()}, "Zone watcher stopped")
			}
		}()
	}

	<-ctx.Done()
	log.Info(nil, "Shutdown initiated")

	done := make(chan struct{})
	go func() {
		stopAll(started)
		close(done)
	}()

	var err error
	select {
	case <-done:
		log.Info(nil, "Graceful shutdown completed")
	case <-time.After(defaultShutdownTimeout):
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout.String()}, "Shutdown timeout exceeded")
		err = errors.New("shutdown timeout")
	}

	// Drop the last published catalog before closing its backing store.
	app.zoneCache.Clear()
	if cerr := app.store.Close(); cerr != nil {
		log.Warn(map[string]any{"error": cerr.Error()}, "Error closing zone store")
	}
	return err
}

func stopAll(transports []resolver.ServerTransport) {
	for _, tr := range transports {
		if err := tr.Stop(); err != nil {
			log.Warn(map[string]any{"address": tr.Address(), "error": err.Error()}, "Error during transport shutdown")
		}
	}
}
