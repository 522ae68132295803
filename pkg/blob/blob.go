// Package blob hands out short-lived, URL-addressable references to
// in-memory payloads, the way a browser mints object URLs for Blobs.
//
// A [Handle] must be released exactly once. Release is idempotent, so
// deferring it next to an early explicit release is safe; only the first
// call frees the payload and is counted. [Registry.Stats] exposes the
// created/released counters that leak tests assert on.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/matzehuels/ratechart/pkg/observability"
)

// Kind is the resource kind reported to observability hooks.
const Kind = "blob"

// ErrReleased is returned when opening a handle after release.
var ErrReleased = fmt.Errorf("blob: handle already released")

// Registry mints handles and tracks which are still live.
type Registry struct {
	scheme string

	mu   sync.Mutex
	live map[string]*Handle

	created  atomic.Int64
	released atomic.Int64
}

// NewRegistry returns an empty registry whose URLs start with
// "blob:<origin>/".
func NewRegistry(origin string) *Registry {
	if origin == "" {
		origin = "ratechart"
	}
	return &Registry{scheme: "blob:" + origin + "/", live: make(map[string]*Handle)}
}

// Stats are registry counters.
type Stats struct {
	Created  int64
	Released int64
	Live     int
}

// Stats returns a snapshot of the counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	live := len(r.live)
	r.mu.Unlock()
	return Stats{Created: r.created.Load(), Released: r.released.Load(), Live: live}
}

// Create stores data under a fresh URL. The registry keeps its own copy of
// data.
func (r *Registry) Create(ctx context.Context, data []byte, mime string) *Handle {
	h := &Handle{
		url:  r.scheme + uuid.NewString(),
		mime: mime,
		data: bytes.Clone(data),
		reg:  r,
		ctx:  context.WithoutCancel(ctx),
	}
	r.mu.Lock()
	r.live[h.url] = h
	r.mu.Unlock()
	r.created.Add(1)
	observability.Resource().OnAllocate(ctx, Kind, h.url, len(data))
	return h
}

// Lookup returns the live handle for url.
func (r *Registry) Lookup(url string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.live[url]
	return h, ok
}

// Handle is a reference to one registered payload.
type Handle struct {
	url  string
	mime string
	reg  *Registry
	ctx  context.Context

	mu       sync.RWMutex
	data     []byte
	released bool
	once     sync.Once
}

// URL returns the handle's address.
func (h *Handle) URL() string { return h.url }

// MIME returns the payload media type.
func (h *Handle) MIME() string { return h.mime }

// Size returns the payload length, or 0 after release.
func (h *Handle) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.data)
}

// Open returns a reader over the payload. The reader stays valid after
// Release; new Opens fail.
func (h *Handle) Open() (io.Reader, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return nil, ErrReleased
	}
	return bytes.NewReader(h.data), nil
}

// Released reports whether Release has been called.
func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}

// Release frees the payload and unregisters the URL. Only the first call
// has any effect.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.mu.Lock()
		h.released = true
		h.data = nil
		h.mu.Unlock()

		h.reg.mu.Lock()
		delete(h.reg.live, h.url)
		h.reg.mu.Unlock()
		h.reg.released.Add(1)
		observability.Resource().OnRelease(h.ctx, Kind, h.url)
	})
}
