// Package config loads rmcat settings.
//
// Settings are layered: built-in defaults, then the YAML file, then RMCAT_*
// environment variables. Command-line flags are applied last by the caller,
// which then calls Validate again.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Environment variables that override the file.
const (
	EnvAPIURL   = "RMCAT_API_URL"
	EnvDB       = "RMCAT_DB"
	EnvLogLevel = "RMCAT_LOG_LEVEL"
)

// Config is the full rmcat configuration.
type Config struct {
	API    API    `yaml:"api" json:"api"`
	Cache  Cache  `yaml:"cache" json:"cache"`
	Server Server `yaml:"server" json:"server"`
	Log    Log    `yaml:"log" json:"log"`
}

// API configures the remote catalog client.
type API struct {
	BaseURL   string  `yaml:"base_url" json:"base_url"`
	Timeout   string  `yaml:"timeout" json:"timeout"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`
	UserAgent string  `yaml:"user_agent" json:"user_agent"`
}

// Cache configures the local database.
type Cache struct {
	Path           string `yaml:"path" json:"path"`
	RefreshTimeout string `yaml:"refresh_timeout" json:"refresh_timeout"`
}

// Server configures `rmcat serve`.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: API{
			BaseURL:   "https://rickandmortyapi.com/api",
			Timeout:   "10s",
			RateLimit: 5,
			Burst:     5,
			UserAgent: "rmcat/1.0",
		},
		Cache: Cache{
			Path:           DefaultCachePath(),
			RefreshTimeout: "15s",
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath is where Load looks when no --config is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rmcat.yaml"
	}
	return filepath.Join(dir, "rmcat", "config.yaml")
}

// DefaultCachePath is the database location when none is configured.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "rmcat.db"
	}
	return filepath.Join(dir, "rmcat", "catalog.db")
}

// Load reads path over the defaults, applies the environment and validates
// the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.Cache.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APITimeout returns the parsed request timeout.
func (c *Config) APITimeout() time.Duration {
	return mustDuration(c.API.Timeout)
}

// RefreshTimeout returns the parsed background refresh timeout.
func (c *Config) RefreshTimeout() time.Duration {
	return mustDuration(c.Cache.RefreshTimeout)
}

// mustDuration parses a duration the schema has already accepted. Anything
// unparsable is zero, which callers treat as "use the default".
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
