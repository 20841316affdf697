package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variable names before they become keys.
const envPrefix = "SHUKE_"

// Transports the server can listen on.
var supportedTransports = []string{"udp", "tcp"}

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Address is the IP address the listeners bind to.
	Address string `koanf:"address" validate:"required,ip"`

	// Port is the network port the DNS server will bind to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65536"`

	// Transports lists the listeners to start.
	Transports []string `koanf:"transports" validate:"required,min=1,dive,transport"`

	// ZoneDir is the directory where zone files are located.
	ZoneDir string `koanf:"zone_dir" validate:"required"`

	// WatchZones reloads ZoneDir when its files change.
	WatchZones bool `koanf:"watch_zones"`

	// DefaultTTL applies to zone records without an explicit or $TTL value.
	DefaultTTL uint32 `koanf:"default_ttl"`

	StoreBackend string `koanf:"store_backend" validate:"required,oneof=memory bolt"`

	// StorePath is the bbolt database file, required for the bolt backend.
	StorePath string `koanf:"store_path" validate:"required_if=StoreBackend bolt"`

	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// DisableCache disables DNS response caching when set to true.
	// Useful for testing scenarios where cache behavior needs to be bypassed.
	DisableCache bool `koanf:"disable_cache"`

	// MaxCNAMEChase bounds the CNAME hops followed for one query.
	MaxCNAMEChase int `koanf:"max_cname_chase" validate:"gte=1,lte=64"`

	// PIDFile, when set, is written at startup and removed on shutdown.
	PIDFile string `koanf:"pid_file"`
}

// ListenAddr joins Address and Port.
func (c *AppConfig) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// DEFAULT_APP_CONFIG defines the default application configuration settings for the DNS service.
// It serves zones from an in-memory store on port 53 over UDP and TCP.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:           "prod",
	LogLevel:      "info",
	Address:       "0.0.0.0",
	Port:          53,
	Transports:    []string{"udp", "tcp"},
	ZoneDir:       "/etc/shuke/zones/",
	WatchZones:    false,
	DefaultTTL:    3600,
	StoreBackend:  "memory",
	StorePath:     "",
	CacheSize:     1000,
	DisableCache:  false,
	MaxCNAMEChase: 8,
	PIDFile:       "",
}

// validTransport reports whether the field names a supported listener.
func validTransport(fl validator.FieldLevel) bool {
	kind := strings.ToLower(fl.Field().String())
	for _, t := range supportedTransports {
		if kind == t {
			return true
		}
	}
	return false
}

// envLoader is a function that loads environment variables with the prefix "SHUKE_".
// It transforms the keys to lowercase and removes the prefix.
// Values containing spaces or commas become lists.
// It can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf instance
// using the structs provider and the DEFAULT_APP_CONFIG struct. It returns an error
// if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "transport" tag with the provided validator.
// Returns an error if registration fails.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("transport", validTransport)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
