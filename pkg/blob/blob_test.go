package blob

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/ratechart/pkg/observability"
)

func TestCreateAndOpen(t *testing.T) {
	r := NewRegistry("")
	data := []byte("<svg/>")
	h := r.Create(context.Background(), data, "image/svg+xml")
	data[0] = 'X'

	if !strings.HasPrefix(h.URL(), "blob:ratechart/") {
		t.Errorf("URL = %q", h.URL())
	}
	if got, ok := r.Lookup(h.URL()); !ok || got != h {
		t.Error("Lookup should find a live handle")
	}
	rd, err := h.Open()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rd)
	if string(got) != "<svg/>" {
		t.Errorf("payload = %q, registry must keep its own copy", got)
	}
	if h.MIME() != "image/svg+xml" || h.Size() != 6 {
		t.Errorf("mime=%q size=%d", h.MIME(), h.Size())
	}
}

func TestReleaseOnce(t *testing.T) {
	r := NewRegistry("test")
	h := r.Create(context.Background(), []byte("x"), "text/plain")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Release()
		}()
	}
	wg.Wait()

	s := r.Stats()
	if s.Created != 1 || s.Released != 1 || s.Live != 0 {
		t.Errorf("stats = %+v, want 1 created, 1 released, 0 live", s)
	}
	if _, err := h.Open(); err != ErrReleased {
		t.Errorf("Open after release = %v, want ErrReleased", err)
	}
	if _, ok := r.Lookup(h.URL()); ok {
		t.Error("released handle still registered")
	}
}

func TestUniqueURLs(t *testing.T) {
	r := NewRegistry("")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		h := r.Create(context.Background(), nil, "")
		if seen[h.URL()] {
			t.Fatalf("duplicate URL %s", h.URL())
		}
		seen[h.URL()] = true
		h.Release()
	}
}

type countingHooks struct {
	observability.NoopResourceHooks
	mu         sync.Mutex
	alloc, rel int
}

func (c *countingHooks) OnAllocate(context.Context, string, string, int) {
	c.mu.Lock()
	c.alloc++
	c.mu.Unlock()
}

func (c *countingHooks) OnRelease(context.Context, string, string) {
	c.mu.Lock()
	c.rel++
	c.mu.Unlock()
}

func TestResourceHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetResourceHooks(hooks)
	defer observability.Reset()

	r := NewRegistry("")
	h := r.Create(context.Background(), []byte("a"), "")
	h.Release()
	h.Release()
	if hooks.alloc != 1 || hooks.rel != 1 {
		t.Errorf("hooks alloc=%d release=%d, want 1/1", hooks.alloc, hooks.rel)
	}
}
