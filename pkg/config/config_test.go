package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/shopfloor/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"SHOPFLOOR_STORE", "SHOPFLOOR_REDIS_ADDR", "SHOPFLOOR_MONGO_URI", "SHOPFLOOR_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport != Default().Viewport || cfg.Store.Backend != BackendFile {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[viewport]
width = 1280
height = 720

[store]
backend = "redis"
name = "cell-a"

[store.redis]
addr = "redis:6379"
ttl = "24h"

[server]
addr = ":9090"
autosave = true

[machines]
file = "machines.toml"
watch = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport.Width != 1280 || cfg.Viewport.Height != 720 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.Name != "cell-a" || cfg.Store.Redis.Addr != "redis:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.TTL != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", cfg.Store.Redis.TTL)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Store.Redis.Prefix != "shopfloor:layout:" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("defaults lost: prefix=%q read=%v", cfg.Store.Redis.Prefix, cfg.Server.ReadTimeout)
	}
	if !cfg.Server.Autosave || !cfg.Machines.Watch || cfg.Machines.File != "machines.toml" {
		t.Errorf("server=%+v machines=%+v", cfg.Server, cfg.Machines)
	}
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[store"},
		{"unknown key", "[store]\ncolour = \"red\"\n"},
		{"unknown backend", "[store]\nbackend = \"etcd\"\n"},
		{"bad viewport", "[viewport]\nwidth = 0\n"},
		{"bad name", "[store]\nname = \"../etc\"\n"},
		{"redis without addr", "[store]\nbackend = \"redis\"\n[store.redis]\naddr = \"\"\n"},
		{"file without dir", "[store]\ndir = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPFLOOR_STORE", "mongo")
	t.Setenv("SHOPFLOOR_MONGO_URI", "mongodb://db:27017")
	t.Setenv("SHOPFLOOR_REDIS_ADDR", "cache:6380")
	t.Setenv("SHOPFLOOR_ADDR", "127.0.0.1:7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendMongo || cfg.Store.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.Addr != "cache:6380" || cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("redis=%q addr=%q", cfg.Store.Redis.Addr, cfg.Server.Addr)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/shopfloor/config.toml" {
		t.Errorf("DefaultPath() = %q", got)
	}
}
