// Package config loads wzrd settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/wzrd/config.toml (falling back to
// ~/.config/wzrd/config.toml). Every field has a default, so a missing file
// or a partial file is fine; command-line flags override file values.
//
//	[layout]
//	hgap = 80.0
//	vgap = 20.0
//
//	[cache]
//	backend = "file"        # file, memory, redis or none
//	prefix = "team-a:"      # optional key scope for shared backends
//
//	[store]
//	backend = "redis"       # file, memory, redis or mongo
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
//	[watch]
//	debounce = "300ms"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wzrd/pkg/core/layout"
	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/store"
)

const appName = "wzrd"

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the complete configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Watch  WatchConfig  `toml:"watch"`
}

// LayoutConfig holds auto-layout spacing.
type LayoutConfig struct {
	HGap float64 `toml:"hgap"`
	VGap float64 `toml:"vgap"`
}

// CacheConfig selects the pipeline cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir,omitempty"`
	URL     string `toml:"url,omitempty"`

	// Prefix scopes every cache key, letting several servers share one Redis.
	Prefix string `toml:"prefix,omitempty"`
}

// StoreConfig selects where graphs are persisted.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir,omitempty"`
	URL        string `toml:"url,omitempty"`
	Database   string `toml:"database,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	Metrics      bool     `toml:"metrics"`
}

// WatchConfig configures the watch preview.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{HGap: layout.DefaultHGap, VGap: layout.DefaultVGap},
		Cache:  CacheConfig{Backend: CacheFile},
		Store:  StoreConfig{Backend: store.BackendFile},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			Metrics:      true,
		},
		Watch: WatchConfig{Debounce: Duration{pipeline.DefaultDebounce}},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of the defaults. An empty path loads
// the default location, where a missing file is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result.
// Unknown keys are rejected so typos do not go unnoticed.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and numeric ranges.
func (c Config) Validate() error {
	if c.Layout.HGap < 0 || c.Layout.VGap < 0 {
		return fmt.Errorf("layout gaps must not be negative")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.URL == "" {
			return fmt.Errorf("cache backend redis needs a url")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendMemory:
	case store.BackendRedis, store.BackendMongo:
		if c.Store.URL == "" {
			return fmt.Errorf("store backend %s needs a url", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Watch.Debounce.Duration < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	return nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}

// String renders c as TOML.
func (c Config) String() string {
	var buf bytes.Buffer
	_ = Write(&buf, c)
	return buf.String()
}

// StoreOptions converts the store section for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:    c.Store.Backend,
		Dir:        c.Store.Dir,
		URL:        c.Store.URL,
		Database:   c.Store.Database,
		Collection: c.Store.Collection,
	}
}

// ApplyLayout copies the layout spacing into pipeline options that do not
// set their own.
func (c Config) ApplyLayout(opts *pipeline.Options) {
	if opts.HGap == 0 {
		opts.HGap = c.Layout.HGap
	}
	if opts.VGap == 0 {
		opts.VGap = c.Layout.VGap
	}
}
