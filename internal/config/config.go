// Package config loads abacus settings from a YAML file and ABACUS_*
// environment variables. Command-line flags are applied on top by the
// commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "abacus.yaml"

// Config is the full application configuration.
type Config struct {
	LogLevel string            `mapstructure:"log_level" yaml:"log_level"`
	ASCII    bool              `mapstructure:"ascii" yaml:"ascii"`
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Store    StoreConfig       `mapstructure:"store" yaml:"store"`
	Keys     map[string]string `mapstructure:"keys" yaml:"keys"`
}

// ServerConfig configures `abacus serve`.
type ServerConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

// StoreConfig selects where server sessions live.
type StoreConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig holds the connection and expiry settings of the redis backend.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			LockTTL: 30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "abacus:",
				TTL:    30 * time.Minute,
			},
		},
		Keys: map[string]string{},
	}
}

// envVars maps environment variables to dotted config paths.
var envVars = map[string]string{
	"ABACUS_LOG_LEVEL":      "log_level",
	"ABACUS_ASCII":          "ascii",
	"ABACUS_SERVER_ADDR":    "server.addr",
	"ABACUS_METRICS":        "server.metrics",
	"ABACUS_STORE":          "store.backend",
	"ABACUS_LOCK_TTL":       "store.lock_ttl",
	"ABACUS_REDIS_ADDR":     "store.redis.addr",
	"ABACUS_REDIS_PASSWORD": "store.redis.password",
	"ABACUS_REDIS_DB":       "store.redis.db",
	"ABACUS_REDIS_PREFIX":   "store.redis.prefix",
	"ABACUS_REDIS_TTL":      "store.redis.ttl",
}

// Load reads path on top of the defaults, then applies the environment.
// A missing file is an error unless path is DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// optional
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without touching the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	return c.decode(raw)
}

// ApplyEnv overrides fields from ABACUS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for name, path := range envVars {
		value, ok := lookup(name)
		if !ok {
			continue
		}
		setPath(raw, strings.Split(path, "."), value)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := c.decode(raw); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

func setPath(m map[string]any, path []string, value string) {
	for _, key := range path[:len(path)-1] {
		next, ok := m[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[key] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func (c *Config) decode(raw map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			keysToStrings,
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// keysToStrings lets YAML bind number keys ("1": percent) and unquoted
// values without surprises: everything under keys is a string.
func keysToStrings(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(map[string]string{}) {
		return data, nil
	}
	in, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

// Validate checks values that the type system cannot.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store.Backend, BackendMemory, BackendRedis)
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("redis ttl must not be negative: %s", c.Store.Redis.TTL)
	}
	if c.Store.LockTTL <= 0 {
		return fmt.Errorf("lock ttl must be positive: %s", c.Store.LockTTL)
	}
	if _, err := keymap.New(c.Keys); err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	return nil
}

// Keymap builds the key bindings described by the configuration.
func (c *Config) Keymap() (*keymap.Keymap, error) {
	return keymap.New(c.Keys)
}
