// Package cli implements the ratechart command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/config"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is replaced by the loaded file before any command runs.
	Config *config.Config
}

// New creates a new CLI instance with a default logger and config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig loads the config file at path, or the default file when path
// is empty.
func (c *CLI) LoadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.Config.CacheTTL()
	return r, nil
}

// newCache opens the configured cache backend. A cache that cannot be
// opened degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", c.Config.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.Config.CachePath()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ratechart/).
func cacheDir() (string, error) {
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the chart options shared by export, preview, serve and
// explore. Empty values fall back to the config.
type renderFlags struct {
	theme     string
	themeFile string
	backend   string
	font      string
	active    int
}

// options merges flags over the loaded config.
func (c *CLI) options(f renderFlags) pipeline.Options {
	opts := c.Config.Options()
	if f.theme != "" {
		opts.Theme = f.theme
	}
	if f.themeFile != "" {
		opts.ThemeFile = f.themeFile
	}
	if f.backend != "" {
		opts.Backend = f.backend
	}
	if f.font != "" {
		opts.FontFile = f.font
	}
	opts.Active = f.active
	opts.Logger = c.Logger
	return opts
}
