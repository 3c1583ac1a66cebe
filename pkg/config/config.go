// Package config loads shopfloor settings from a TOML file.
//
// Every field has a default, so a missing file yields a working in-memory
// setup. A handful of environment variables override the file for container
// deployments:
//
//	SHOPFLOOR_STORE       store.backend
//	SHOPFLOOR_REDIS_ADDR  store.redis.addr
//	SHOPFLOOR_MONGO_URI   store.mongo.uri
//	SHOPFLOOR_ADDR        server.addr
//
// Example file:
//
//	[viewport]
//	width = 1280
//	height = 720
//
//	[store]
//	backend = "redis"
//	name = "cell-a"
//
//	[store.redis]
//	addr = "localhost:6379"
//
//	[machines]
//	file = "machines.toml"
//	watch = true
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shopfloor/pkg/errors"
)

const appName = "shopfloor"

// Store backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
	Machines Machines `toml:"machines"`
	Layout   Layout   `toml:"layout"`
}

// Viewport is the canvas size used to center new items.
type Viewport struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Store selects where layout snapshots are persisted.
type Store struct {
	Backend string `toml:"backend"`
	// Name is the snapshot key; one per shop floor.
	Name  string `toml:"name"`
	Dir   string `toml:"dir"`
	Redis Redis  `toml:"redis"`
	Mongo Mongo  `toml:"mongo"`
}

// Redis configures the Redis snapshot backend.
type Redis struct {
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// Mongo configures the MongoDB snapshot backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server configures the HTTP host.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	// Autosave persists the layout after every mutating request.
	Autosave bool `toml:"autosave"`
}

// Machines points at an optional catalog file.
type Machines struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// Layout controls session startup.
type Layout struct {
	// Seed places the default floor plan when no snapshot is stored.
	Seed bool `toml:"seed"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Viewport: Viewport{Width: 850, Height: 550},
		Store: Store{
			Backend: BackendFile,
			Name:    "default",
			Dir:     defaultDataDir(),
			Redis:   Redis{Addr: "localhost:6379", Prefix: "shopfloor:layout:"},
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: appName, Collection: "layouts"},
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Layout: Layout{Seed: true},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path or a missing file is not an error. Unknown keys are.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			cfg = Default()
		case err != nil:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SHOPFLOOR_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("SHOPFLOOR_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("SHOPFLOOR_MONGO_URI"); v != "" {
		c.Store.Mongo.URI = v
	}
	if v := os.Getenv("SHOPFLOOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if err := errors.ValidateSnapshotName(c.Store.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "store.name")
	}
	switch c.Store.Backend {
	case BackendNone, BackendMemory:
	case BackendFile:
		if c.Store.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis.addr is required for the redis backend")
		}
		if c.Store.Redis.TTL < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis.ttl cannot be negative")
		}
	case BackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo needs uri, database and collection")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}

// DefaultPath returns the config file location (~/.config/shopfloor/config.toml).
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultDataDir returns ~/.local/share/shopfloor, following XDG_DATA_HOME.
func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}
