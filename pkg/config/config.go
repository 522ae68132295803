// Package config loads ratechart settings from a TOML file and the
// environment.
//
// Settings are resolved in this order, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. ~/.config/ratechart/config.toml, or the file passed to [Load]
//  3. RATECHART_* environment variables
//
// Command-line flags are applied on top by the CLI. A typical file:
//
//	theme = "elegant"
//	output_dir = "~/Downloads"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// AppName names the config and cache directories.
const AppName = "ratechart"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults.
const (
	DefaultRedisAddr  = "localhost:6379"
	DefaultServerAddr = "127.0.0.1:8080"
	DefaultCacheTTL   = "168h"
)

var validCacheBackends = []string{CacheFile, CacheRedis, CacheNone}

// Config holds every persistent ratechart setting.
type Config struct {
	Theme     string `toml:"theme"`
	ThemeFile string `toml:"theme_file"`
	Backend   string `toml:"backend"`
	FontFile  string `toml:"font_file"`
	OutputDir string `toml:"output_dir"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects where exported artifacts are cached.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	TTL       string `toml:"ttl"`
}

// ServerConfig configures `ratechart serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme:     pipeline.DefaultTheme,
		Backend:   pipeline.DefaultBackend,
		OutputDir: ".",
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: DefaultRedisAddr,
			TTL:       DefaultCacheTTL,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Dir returns the configuration directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default artifact cache directory, honouring
// XDG_CACHE_HOME.
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path. An empty path selects [Path]; a
// missing default file is not an error, but a missing explicit one is.
// Environment overrides, defaults and validation are applied in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return cfg, nil
}

// ApplyEnvOverrides copies RATECHART_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RATECHART_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("RATECHART_THEME_FILE"); v != "" {
		c.ThemeFile = v
	}
	if v := os.Getenv("RATECHART_BACKEND"); v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("RATECHART_FONT"); v != "" {
		c.FontFile = v
	}
	if v := os.Getenv("RATECHART_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("RATECHART_CACHE"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("RATECHART_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("RATECHART_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// SetDefaults fills empty fields and expands a leading ~ in paths.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = d.Cache.RedisAddr
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = d.Cache.TTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	c.ThemeFile = expandHome(c.ThemeFile)
	c.FontFile = expandHome(c.FontFile)
	c.OutputDir = expandHome(c.OutputDir)
	c.Cache.Dir = expandHome(c.Cache.Dir)
}

// ValidationError is a problem with one config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every field problem found by [Config.Validate].
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.ThemeFile == "" {
		if _, err := chart.ThemeByName(c.Theme); err != nil {
			errs = append(errs, ValidationError{
				Field:   "theme",
				Message: fmt.Sprintf("unknown theme '%s', must be one of: %s", c.Theme, strings.Join(chart.ThemeNames(), ", ")),
			})
		}
	}
	if err := pipeline.ValidateBackend(c.Backend); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: %s", c.Backend, strings.Join(pipeline.ValidBackends, ", ")),
		})
	}
	if err := errors.ValidateOutputDir(c.OutputDir); err != nil {
		errs = append(errs, ValidationError{Field: "output_dir", Message: errors.UserMessage(err)})
	}
	if !slices.Contains(validCacheBackends, c.Cache.Backend) {
		errs = append(errs, ValidationError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("invalid cache backend '%s', must be one of: file, redis, none", c.Cache.Backend),
		})
	}
	if ttl, err := time.ParseDuration(c.Cache.TTL); err != nil || ttl <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl",
			Message: fmt.Sprintf("invalid duration '%s'", c.Cache.TTL),
		})
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		errs = append(errs, ValidationError{Field: "cache.redis_addr", Message: "required when cache.backend is redis"})
	}
	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Message: "cannot be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CacheTTL returns the parsed cache TTL, falling back to
// [cache.TTLArtifact] when it does not parse.
func (c *Config) CacheTTL() time.Duration {
	if d, err := time.ParseDuration(c.Cache.TTL); err == nil && d > 0 {
		return d
	}
	return cache.TTLArtifact
}

// CachePath returns the file cache directory: the configured one, or the
// XDG default.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return CacheDir()
}

// Options converts the config into export options.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Theme:     c.Theme,
		ThemeFile: c.ThemeFile,
		Backend:   c.Backend,
		FontFile:  c.FontFile,
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
