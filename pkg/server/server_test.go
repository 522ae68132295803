package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/observability"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

func newTestServer(t *testing.T, years ...int) *Server {
	t.Helper()
	sel := &dataset.Selection{}
	for _, y := range years {
		if _, err := sel.Add(y); err != nil {
			t.Fatalf("Add(%d): %v", y, err)
		}
	}
	logger := log.New(io.Discard)
	return New(pipeline.NewRunner(nil, nil, logger), sel, pipeline.Options{}, logger)
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestPoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"add", http.MethodPost, "/api/points", `{"year": 1990}`, http.StatusCreated, ""},
		{"add with rate", http.MethodPost, "/api/points", `{"year": 2000, "rate": 1.5}`, http.StatusCreated, ""},
		{"duplicate", http.MethodPost, "/api/points", `{"year": 1990}`, http.StatusConflict, "DUPLICATE_YEAR"},
		{"out of range", http.MethodPost, "/api/points", `{"year": 1950}`, http.StatusBadRequest, "INVALID_YEAR"},
		{"bad json", http.MethodPost, "/api/points", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"remove", http.MethodDelete, "/api/points/2000", "", http.StatusNoContent, ""},
		{"remove missing", http.MethodDelete, "/api/points/2000", "", http.StatusNotFound, "UNKNOWN_YEAR"},
		{"remove bad year", http.MethodDelete, "/api/points/abc", "", http.StatusBadRequest, "INVALID_YEAR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if tt.code != "" {
				var body errorBody
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if string(body.Code) != tt.code {
					t.Errorf("code = %q, want %q", body.Code, tt.code)
				}
			}
		})
	}

	rec := do(s, http.MethodGet, "/api/points", "")
	pts, err := dataset.ReadJSON(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 1 || pts[0].Year != 1990 {
		t.Errorf("points = %v, want [1990]", pts)
	}

	if rec := do(s, http.MethodDelete, "/api/points", ""); rec.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rec.Code)
	}
	if s.Selection().Len() != 0 {
		t.Errorf("selection not cleared")
	}
}

func TestChart(t *testing.T) {
	s := newTestServer(t)
	if rec := do(s, http.MethodGet, "/chart.svg", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("empty chart status = %d", rec.Code)
	}

	s.Selection().Add(1990)
	s.Selection().Add(2000)
	rec := do(s, http.MethodGet, "/chart.svg?active=2000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("body is not svg")
	}
}

func TestPage(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), chart.EmptyMessage) {
		t.Errorf("empty page missing placeholder")
	}

	s.Selection().Add(1990)
	rec = do(s, http.MethodGet, "/", "")
	body := rec.Body.String()
	if strings.Contains(body, chart.EmptyMessage) {
		t.Errorf("placeholder shown with data")
	}
	if !strings.Contains(body, "<svg") || !strings.Contains(body, "1990년") {
		t.Errorf("page missing chart or point list")
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, 1970, 1990, 2023)

	rec := do(s, http.MethodPost, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("disposition = %q", cd)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 1200 {
		t.Errorf("size = %v, want 1600x1200", b)
	}
}

func TestExportEmpty(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/export", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %d bytes, want none", rec.Body.Len())
	}
}

func TestExportInvalidOptions(t *testing.T) {
	s := newTestServer(t, 1990)
	rec := do(s, http.MethodPost, "/api/export", `{"theme": "neon"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body)
	}
}

type recordingHTTPHooks struct {
	mu       sync.Mutex
	requests int
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	h.requests++
	h.mu.Unlock()
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	do(s, http.MethodGet, "/api/points", "")
	do(s, http.MethodGet, "/missing", "")

	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	if len(hooks.statuses) != 2 || hooks.statuses[0] != http.StatusOK || hooks.statuses[1] != http.StatusNotFound {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
