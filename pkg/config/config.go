// Package config loads the configuration of loam.
//
// The configuration is a YAML file; every key is optional and missing keys
// take the values of Default. Command-line flags are applied on top by the
// caller.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
	"loam.dev/pkg/env"
	"loam.dev/pkg/store"
	"loam.dev/pkg/store/storedefs"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned for a storage backend that is not one of the
// Backend constants.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Config is the configuration of loam.
type Config struct {
	Debug     bool      `yaml:"debug"`
	Log       string    `yaml:"log"`
	StartURL  string    `yaml:"start_url"`
	Storage   Storage   `yaml:"storage"`
	HTTP      HTTP      `yaml:"http"`
	Inspector Inspector `yaml:"inspector"`
	Demo      Demo      `yaml:"demo"`
}

// Storage configures the store behind storage effects.
type Storage struct {
	Backend string `yaml:"backend"`
	// Path of the database file of the bolt backend.
	Path  string `yaml:"path"`
	Redis Redis  `yaml:"redis"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// HTTP configures fetch effects.
type HTTP struct {
	Timeout time.Duration `yaml:"timeout"`
	// Requests per second; zero means unlimited.
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// Inspector configures the debug inspector. It only runs in debug mode.
type Inspector struct {
	Addr string `yaml:"addr"`
}

// Demo configures the demo app run by "loam run".
type Demo struct {
	Greeting string `yaml:"greeting"`
	// If set, greetings are fetched from this URL.
	GreetingURL  string        `yaml:"greeting_url"`
	Latency      time.Duration `yaml:"latency"`
	ToastTimeout time.Duration `yaml:"toast_timeout"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		StartURL:  "/",
		Storage:   Storage{Backend: BackendMemory, Redis: Redis{Addr: "localhost:6379", Prefix: "loam:"}},
		HTTP:      HTTP{Timeout: 10 * time.Second, Burst: 1},
		Inspector: Inspector{Addr: "localhost:7171"},
		Demo:      Demo{Greeting: "Hello", Latency: 300 * time.Millisecond, ToastTimeout: 5 * time.Second},
	}
}

// DefaultPath returns the path of the configuration file to use when none is
// given: $LOAM_CONFIG if set, otherwise loam/config.yaml in the user
// configuration directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(env.LOAM_CONFIG); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "loam", "config.yaml"), nil
}

// Load reads a configuration file. A missing file yields the default
// configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses YAML into cfg, keeping the values of keys that are absent.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendBolt:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the bolt backend")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}
	if c.HTTP.Rate < 0 || c.HTTP.Burst < 0 || c.HTTP.Timeout < 0 {
		return errors.New("http settings must not be negative")
	}
	if c.Demo.Latency < 0 || c.Demo.ToastTimeout < 0 {
		return errors.New("demo durations must not be negative")
	}
	return nil
}

// OpenStore opens the configured store.
func (c *Config) OpenStore(ctx context.Context) (storedefs.Store, error) {
	switch c.Storage.Backend {
	case BackendMemory:
		return store.NewMemStore(), nil
	case BackendBolt:
		s, err := store.NewBoltStore(c.Storage.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		r := c.Storage.Redis
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
}

// Limiter returns the rate limiter for fetch effects, or nil if requests are
// not limited.
func (c *Config) Limiter() *rate.Limiter {
	if c.HTTP.Rate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.HTTP.Rate), max(c.HTTP.Burst, 1))
}
