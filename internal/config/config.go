// Package config loads the tagtree configuration file.
//
// The file lives at $XDG_CONFIG_HOME/tagtree/config.toml unless a path is
// given. Missing keys keep their defaults. A .env file in the working
// directory is loaded before the environment is consulted, and the
// environment overrides the file for secrets and service addresses.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/tagtree/pkg/cache"
	"github.com/matzehuels/tagtree/pkg/expand"
	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/integrations/flickr"
	"github.com/matzehuels/tagtree/pkg/physics"
	"github.com/matzehuels/tagtree/pkg/seen"
)

const appName = "tagtree"

// Environment variables that override the file.
const (
	EnvAPIKey   = "FLICKR_API_KEY"
	EnvRedisURL = "TAGTREE_REDIS_URL"
	EnvMongoURI = "TAGTREE_MONGO_URI"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendMongo  = "mongo"
)

// Config holds tagtree configuration.
type Config struct {
	Physics physics.Params `toml:"physics"`
	Expand  expand.Config  `toml:"expand"`
	Grow    grow.Config    `toml:"grow"`
	Flickr  FlickrConfig   `toml:"flickr"`
	Cache   CacheConfig    `toml:"cache"`
	Seen    SeenConfig     `toml:"seen"`
	Redis   RedisConfig    `toml:"redis"`
	Archive ArchiveConfig  `toml:"archive"`
	Server  ServerConfig   `toml:"server"`
}

// FlickrConfig configures the photo search client.
type FlickrConfig struct {
	APIKey   string        `toml:"api_key"`
	BaseURL  string        `toml:"base_url"`
	PerPage  int           `toml:"per_page"`
	Attempts int           `toml:"attempts"` // HTTP attempts per search
	Timeout  time.Duration `toml:"timeout"`  // per request
}

// CacheConfig selects where search responses are cached.
type CacheConfig struct {
	Backend string        `toml:"backend"` // "file", "redis" or "none"
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
}

// SeenConfig selects where used images are remembered.
type SeenConfig struct {
	Backend string `toml:"backend"` // "memory" or "redis"
	Key     string `toml:"key"`
}

// RedisConfig is shared by the redis cache and seen backends.
type RedisConfig struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

// ArchiveConfig selects where finished runs are stored.
type ArchiveConfig struct {
	Backend    string `toml:"backend"` // "dir", "mongo" or "none"
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the live snapshot server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Physics: physics.DefaultParams(),
		Expand:  expand.DefaultConfig(),
		Grow:    grow.Config{MaxNodes: 40},
		Flickr: FlickrConfig{
			BaseURL:  flickr.DefaultBaseURL,
			PerPage:  flickr.DefaultPerPage,
			Attempts: 1,
			Timeout:  10 * time.Second,
		},
		Cache:   CacheConfig{Backend: BackendFile, Dir: CacheDir(), TTL: cache.TTLSearch},
		Seen:    SeenConfig{Backend: BackendMemory, Key: seen.DefaultRedisKey},
		Redis:   RedisConfig{URL: "redis://localhost:6379/0", Prefix: "tagtree:cache:"},
		Archive: ArchiveConfig{Backend: BackendDir, Dir: filepath.Join(DataDir(), "runs")},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// ConfigDir returns the tagtree config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the tagtree cache directory.
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the tagtree data directory.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	dir := os.Getenv(env)
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, fallback)
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or at Path() when path is empty, and
// applies environment overrides. A missing default file is not an error; a
// missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if und := md.Undecoded(); len(und) > 0 {
			keys := make([]string, len(und))
			for i, k := range und {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Flickr.APIKey = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Archive.MongoURI = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("[physics] %w", err)
	}
	if err := c.Expand.Validate(); err != nil {
		return fmt.Errorf("[expand] %w", err)
	}
	if c.Grow.MaxNodes < 0 {
		return fmt.Errorf("[grow] max_nodes must be >= 0")
	}
	if c.Flickr.PerPage < 1 || c.Flickr.PerPage > 500 {
		return fmt.Errorf("[flickr] per_page must be between 1 and 500")
	}
	if c.Flickr.Attempts < 1 {
		return fmt.Errorf("[flickr] attempts must be >= 1")
	}
	if c.Flickr.Timeout <= 0 {
		return fmt.Errorf("[flickr] timeout must be positive")
	}
	if err := oneOf("cache.backend", c.Cache.Backend, BackendFile, BackendRedis, BackendNone); err != nil {
		return err
	}
	if err := oneOf("seen.backend", c.Seen.Backend, BackendMemory, BackendRedis); err != nil {
		return err
	}
	if err := oneOf("archive.backend", c.Archive.Backend, BackendDir, BackendMongo, BackendNone); err != nil {
		return err
	}
	if c.Archive.Backend == BackendMongo && c.Archive.MongoURI == "" {
		return fmt.Errorf("[archive] mongo backend needs mongo_uri or %s", EnvMongoURI)
	}
	if (c.Cache.Backend == BackendRedis || c.Seen.Backend == BackendRedis) && c.Redis.URL == "" {
		return fmt.Errorf("[redis] url is required by the redis backends")
	}
	return nil
}

func oneOf(key, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("%s: %q is not one of %s", key, v, strings.Join(allowed, ", "))
}

// Save writes cfg to path, or to Path() when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
