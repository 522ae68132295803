// Package pipeline runs chart exports for every ratechart entry point.
//
// The CLI, the HTTP server and the explorer TUI all export through a
// [Runner], so they share option defaults, validation and the artifact
// cache:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Export(ctx, points, export.FileEmitter{Dir: "."}, pipeline.Options{
//	    Theme:   "elegant",
//	    Backend: pipeline.BackendNative,
//	})
//
// Exports are deterministic, so a cache hit replays the stored PNG
// through the emitter instead of rasterising again.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
)

// Raster backends.
const (
	BackendNative = "native"
	BackendRsvg   = "rsvg"
)

// Defaults shared by every entry point.
const (
	DefaultTheme   = chart.ThemeCard
	DefaultBackend = BackendNative
)

// ValidBackends lists the accepted Backend values.
var ValidBackends = []string{BackendNative, BackendRsvg}

// Options configures one export.
// This struct supports JSON serialization for API requests.
type Options struct {
	Theme     string `json:"theme,omitempty"`
	ThemeFile string `json:"-"`
	Backend   string `json:"backend,omitempty"`
	FontFile  string `json:"-"`

	// Active highlights the marker of this year, as when hovered.
	Active int `json:"active,omitempty"`

	// Refresh bypasses cache reads; the result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result reports an export.
type Result struct {
	// Skipped is set when there were no points. Nothing was emitted.
	Skipped bool

	// Outcome is the exporter's report. It is zero on a cache hit.
	Outcome export.Outcome

	Artifact *export.Artifact
	DataHash string
	CacheKey string
	CacheHit bool
	Duration time.Duration
}

// ValidateBackend checks that backend is supported.
func ValidateBackend(backend string) error {
	if !slices.Contains(ValidBackends, backend) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid backend: %q (must be one of: native, rsvg)", backend)
	}
	return nil
}

// ValidateTheme checks that name is a built-in theme.
func ValidateTheme(name string) error {
	_, err := chart.ThemeByName(name)
	return err
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.ThemeFile == "" {
		if err := ValidateTheme(o.Theme); err != nil {
			return err
		}
	}
	if err := ValidateBackend(o.Backend); err != nil {
		return err
	}
	if o.Active != 0 {
		if err := errors.ValidateYear(o.Active); err != nil {
			return fmt.Errorf("active: %w", err)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the cache key options for these settings.
// fontHash identifies a custom font file and is empty for the default set.
func (o *Options) ArtifactKeyOpts(theme chart.Theme, fontHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Theme:   themeKey(theme),
		Backend: o.Backend,
		Font:    fontHash,
		Scale:   export.Scale,
		Active:  o.Active,
	}
}

// themeKey identifies a theme by its name and generated CSS, so edited
// theme files do not reuse stale artifacts.
func themeKey(t chart.Theme) string {
	return t.Name + ":" + cache.Hash([]byte(t.CSS()))[:16]
}
