package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Layout.HGap != 80 || cfg.Layout.VGap != 20 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Store.Backend != store.BackendFile {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[layout]
hgap = 40.0

[cache]
prefix = "team-a:"

[store]
backend = "redis"
url = "redis://localhost:6379/1"

[watch]
debounce = "1s"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.HGap != 40 || cfg.Layout.VGap != 20 {
		t.Errorf("partial layout section should keep defaults: %+v", cfg.Layout)
	}
	if cfg.Cache.Prefix != "team-a:" || cfg.Cache.Backend != CacheFile {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Watch.Debounce.Duration != time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if opts := cfg.StoreOptions(); opts.Backend != "redis" || opts.URL != "redis://localhost:6379/1" {
		t.Errorf("StoreOptions = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"Syntax", `[layout`, "parse config"},
		{"UnknownKey", "[layout]\nhgapp = 1.0", "unknown config key"},
		{"NegativeGap", "[layout]\nvgap = -1.0", "negative"},
		{"UnknownCache", "[cache]\nbackend = \"s3\"", "unknown cache backend"},
		{"StoreNeedsURL", "[store]\nbackend = \"mongo\"", "needs a url"},
		{"BadDuration", "[watch]\ndebounce = \"soon\"", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Missing default file is fine.
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Load without file = %+v", cfg.Server)
	}

	// Missing explicit file is not.
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing file should fail")
	}

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Watch.Debounce = Duration{2 * time.Second}
	again, err := Parse([]byte(cfg.String()))
	if err != nil {
		t.Fatalf("Parse(String()): %v\n%s", err, cfg.String())
	}
	if again != cfg {
		t.Errorf("round trip = %+v, want %+v", again, cfg)
	}
}

func TestApplyLayout(t *testing.T) {
	cfg := Default()
	cfg.Layout.HGap = 12

	opts := pipeline.Options{VGap: 3}
	cfg.ApplyLayout(&opts)
	if opts.HGap != 12 || opts.VGap != 3 {
		t.Errorf("ApplyLayout = %v/%v, want 12/3", opts.HGap, opts.VGap)
	}
}
