package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/blob"
	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/observability"
)

// Runner executes exports with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner keeps no per-export state, so multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL bounds how long stored artifacts stay valid. Zero means
	// cache.TTLArtifact.
	TTL time.Duration

	// Blobs tracks decode handles across every export of this runner.
	Blobs *blob.Registry
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Blobs:  blob.NewRegistry(""),
	}
}

// Export renders points and hands the artifact to em exactly once.
// An empty point set is a no-op. Errors carry pkg/errors codes.
func (r *Runner) Export(ctx context.Context, points []dataset.Point, em export.Emitter, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		r.Logger.Debug("nothing to export")
		return &Result{Skipped: true}, nil
	}

	panel, err := NewPanel(points, opts)
	if err != nil {
		return nil, err
	}
	dec, fontHash, err := NewDecoder(opts, r.Logger)
	if err != nil {
		return nil, err
	}

	hash, err := pointsHash(panel.Points())
	if err != nil {
		return nil, err
	}
	res := &Result{DataHash: hash}
	res.CacheKey = r.Keyer.ArtifactKey(res.DataHash, opts.ArtifactKeyOpts(panel.Theme(), fontHash))

	if !opts.Refresh {
		if png, hit, err := r.Cache.Get(ctx, res.CacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			art := &export.Artifact{
				Name:   export.Filename,
				MIME:   export.MIMEType,
				Data:   png,
				Width:  export.Width * export.Scale,
				Height: export.Height * export.Scale,
			}
			if err := em.Emit(ctx, art); err != nil {
				return nil, errors.Wrap(errors.ErrCodeEmit, err, "deliver %s", art.Name)
			}
			res.Artifact, res.CacheHit = art, true
			res.Duration = time.Since(start)
			r.Logger.Debug("export served from cache", "key", res.CacheKey)
			return res, nil
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	exp := export.New(dec, em, r.Logger)
	exp.Blobs = r.Blobs
	res.Outcome = exp.Export(ctx, panel)
	res.Duration = time.Since(start)
	if res.Outcome.Err != nil {
		return res, res.Outcome.Err
	}
	if res.Outcome.Skipped {
		res.Skipped = true
		return res, nil
	}
	res.Artifact = res.Outcome.Artifact

	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, res.CacheKey, res.Artifact.Data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(res.Artifact.Data))
	}
	r.Logger.Info("exported chart",
		"points", len(points),
		"bytes", len(res.Artifact.Data),
		"duration", res.Duration)
	return res, nil
}

// pointsHash is the cache identity of the exported data.
func pointsHash(points []dataset.Point) (string, error) {
	data, err := json.Marshal(points)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash points")
	}
	return cache.Hash(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
