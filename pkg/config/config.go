package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/museum/pkg/cache"
	"github.com/matzehuels/museum/pkg/errors"
	"github.com/matzehuels/museum/pkg/integrations/spotify"
)

const appName = "museum"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

var backends = []string{BackendFile, BackendRedis, BackendMongo, BackendNone}

// Config is the effective museum configuration.
type Config struct {
	Spotify Spotify `toml:"spotify"`
	Layout  Layout  `toml:"layout"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Spotify holds the Web API and login settings.
type Spotify struct {
	ClientID    string `toml:"client_id"`
	RedirectURL string `toml:"redirect_url"`
	TimeRange   string `toml:"time_range"`
	BaseURL     string `toml:"base_url,omitempty"`

	// Token is a pre-issued access token. It is read from SPOTIFY_TOKEN
	// only and never written back to the file.
	Token string `toml:"-"`
}

// Layout holds the canvas defaults for built museums.
type Layout struct {
	Width         float64   `toml:"width"`
	Height        float64   `toml:"height"`
	Sizes         []float64 `toml:"sizes,omitempty"`
	MaxRotation   float64   `toml:"max_rotation,omitempty"`
	FillerDensity float64   `toml:"filler_density,omitempty"`
	MaxItems      int       `toml:"max_items,omitempty"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir,omitempty"`
	RedisURL        string `toml:"redis_url,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
}

// Server configures `museum serve`.
type Server struct {
	Addr           string `toml:"addr"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (s Server) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Spotify: Spotify{
			RedirectURL: spotify.DefaultRedirectURL,
			TimeRange:   string(spotify.MediumTerm),
		},
		Layout: Layout{Width: 800, Height: 600},
		Cache:  Cache{Backend: BackendFile},
		Server: Server{Addr: ":8080", TimeoutSeconds: 30},
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

// CacheDir returns the default file cache directory (~/.cache/museum).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path on top of [Default]. A missing file is not
// an error. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read through
// getenv (usually os.Getenv).
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	set(&c.Spotify.Token, "SPOTIFY_TOKEN")
	set(&c.Spotify.RedirectURL, "SPOTIFY_REDIRECT_URL")
	set(&c.Cache.Backend, "MUSEUM_CACHE_BACKEND")
	set(&c.Cache.RedisURL, "MUSEUM_REDIS_URL")
	set(&c.Cache.MongoURI, "MUSEUM_MONGO_URI")
	set(&c.Server.Addr, "MUSEUM_ADDR")
}

// Validate checks the configuration for values the pipeline would reject
// later.
func (c *Config) Validate() error {
	if _, err := spotify.ParseTimeRange(c.Spotify.TimeRange); err != nil {
		return err
	}
	if c.Spotify.BaseURL != "" {
		if err := errors.ValidateURL(c.Spotify.BaseURL); err != nil {
			return err
		}
	}
	if err := errors.ValidateCanvasSize(c.Layout.Width, c.Layout.Height); err != nil {
		return err
	}
	if c.Layout.FillerDensity < 0 || c.Layout.MaxItems < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "filler_density and max_items cannot be negative")
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want one of: %s)",
			c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis needs redis_url")
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend mongo needs mongo_uri")
	}
	if c.Server.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server timeout cannot be negative")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// String returns the TOML form of the configuration.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err.Error()
	}
	return buf.String()
}

// OpenCache opens the configured cache backend. noCache forces the null
// cache regardless of the configuration.
func (c *Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, c.Cache.MongoURI, c.Cache.MongoDatabase, c.Cache.MongoCollection)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(mc), nil
	case BackendFile, "":
		dir, err := c.FileCacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
}

// FileCacheDir returns the file cache directory: [cache] dir when set,
// otherwise [CacheDir].
func (c *Config) FileCacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}
