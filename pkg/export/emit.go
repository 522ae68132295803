package export

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// Emitter delivers an artifact to the user. Emit is called exactly once
// per artifact and is never retried.
type Emitter interface {
	Emit(ctx context.Context, a *Artifact) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, a *Artifact) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, a *Artifact) error { return f(ctx, a) }

// FileEmitter writes artifacts into Dir under their suggested name.
// The file appears atomically: readers see either the old file or the
// complete new one.
type FileEmitter struct {
	Dir string

	// Path receives the written path. Optional.
	Path func(string)
}

// Emit implements Emitter.
func (e FileEmitter) Emit(_ context.Context, a *Artifact) error {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".ratechart-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	path := filepath.Join(dir, a.Name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	if e.Path != nil {
		e.Path(path)
	}
	return nil
}

// ResponseEmitter sends artifacts as an HTTP attachment.
type ResponseEmitter struct {
	W http.ResponseWriter
}

// Emit implements Emitter. The filename is encoded per RFC 2231 so that
// non-ASCII names survive.
func (e ResponseEmitter) Emit(_ context.Context, a *Artifact) error {
	disp := mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})
	if disp == "" {
		return fmt.Errorf("cannot encode filename %q", a.Name)
	}
	h := e.W.Header()
	h.Set("Content-Type", a.MIME)
	h.Set("Content-Disposition", disp)
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	e.W.WriteHeader(http.StatusOK)
	_, err := e.W.Write(a.Data)
	return err
}
