// Logging for ratechart commands.
//
// The CLI logger goes to stderr so chart output on stdout (preview) stays
// clean. Export runs report through an exportRun, which logs one debug line
// per step and a single summary line with the artifact, its size and whether
// it came from the cache. Commands fetch the logger from their context.

package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// newLogger returns a logger on w with centisecond timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// exportRun times one export invocation of the CLI. Not safe for concurrent use.
type exportRun struct {
	logger *log.Logger
	points int
	start  time.Time
	step   string
	mark   time.Time
}

func newExportRun(l *log.Logger, points int) *exportRun {
	now := time.Now()
	return &exportRun{logger: l, points: points, start: now, mark: now}
}

// begin closes the current step, if any, and starts the named one.
func (r *exportRun) begin(step string) {
	now := time.Now()
	if r.step != "" {
		r.logger.Debug("step done", "step", r.step, "took", now.Sub(r.mark).Round(time.Millisecond))
	}
	r.step, r.mark = step, now
}

// done logs the summary of a successful export written to path.
func (r *exportRun) done(res *pipeline.Result, path string) {
	r.begin("")
	r.logger.Info("export finished",
		"points", r.points,
		"file", path,
		"bytes", len(res.Artifact.Data),
		"cached", res.CacheHit,
		"elapsed", time.Since(r.start).Round(time.Millisecond))
}

// failed logs a failed export with its error code.
func (r *exportRun) failed(err error) {
	r.logger.Error("export failed",
		"step", r.step,
		"code", errors.GetCode(err),
		"elapsed", time.Since(r.start).Round(time.Millisecond),
		"err", err)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() for contexts that never went through it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
