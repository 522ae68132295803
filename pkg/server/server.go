// Package server serves the fertility-rate panel over HTTP.
//
// Routes:
//
//	GET    /                   panel page with the live chart
//	GET    /chart.svg          live chart as a standalone SVG
//	GET    /api/points         current selection as JSON
//	POST   /api/points         add a year ({"year": 1990}) or a point with a rate
//	DELETE /api/points         clear the selection
//	DELETE /api/points/{year}  remove one year
//	POST   /api/export         PNG attachment of the current chart
//
// All handlers share one selection. Exports run through a
// [pipeline.Runner], so repeated exports of the same data are served from
// its cache.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// Server holds the shared selection and the export runner.
type Server struct {
	Runner  *pipeline.Runner
	Options pipeline.Options
	Logger  *log.Logger

	sel    *dataset.Selection
	router chi.Router
}

// New returns a server for sel. A nil sel starts empty.
func New(runner *pipeline.Runner, sel *dataset.Selection, opts pipeline.Options, logger *log.Logger) *Server {
	if sel == nil {
		sel = &dataset.Selection{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		Runner:  runner,
		Options: opts,
		Logger:  logger,
		sel:     sel,
	}
	s.router = s.routes()
	return s
}

// Selection returns the shared selection.
func (s *Server) Selection() *dataset.Selection { return s.sel }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/chart.svg", s.handleChart)
	r.Route("/api", func(r chi.Router) {
		r.Get("/points", s.handleListPoints)
		r.Post("/points", s.handleAddPoint)
		r.Delete("/points", s.handleClearPoints)
		r.Delete("/points/{year}", s.handleRemovePoint)
		r.Post("/export", s.handleExport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	points := s.sel.Points()
	if len(points) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := pipeline.Preview(w, points, s.options(r)); err != nil {
		s.Logger.Error("preview failed", "err", err)
	}
}

func (s *Server) handleListPoints(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := dataset.WriteJSON(s.sel.Points(), w); err != nil {
		s.Logger.Warn("write points", "err", err)
	}
}

type addRequest struct {
	Year int      `json:"year"`
	Rate *float64 `json:"rate,omitempty"`
}

func (s *Server) handleAddPoint(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	var (
		p   dataset.Point
		err error
	)
	if req.Rate != nil {
		p = dataset.Point{Year: req.Year, Rate: *req.Rate}
		err = s.sel.Put(p)
	} else {
		p, err = s.sel.Add(req.Year)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleClearPoints(w http.ResponseWriter, _ *http.Request) {
	s.sel.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemovePoint(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidYear, "invalid year %q", chi.URLParam(r, "year")))
		return
	}
	if !s.sel.Remove(year) {
		writeError(w, errors.New(errors.ErrCodeUnknownYear, "%d is not selected", year))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := s.Options
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
			return
		}
	}

	res, err := s.Runner.Export(r.Context(), s.sel.Points(), export.ResponseEmitter{W: w}, opts)
	switch {
	case err != nil && errors.Is(err, errors.ErrCodeEmit):
		// Headers are already out.
		s.Logger.Warn("export delivery failed", "err", err)
	case err != nil:
		writeError(w, err)
	case res.Skipped:
		w.WriteHeader(http.StatusNoContent)
	}
}

// options returns the server options with an optional ?active=YEAR
// highlight.
func (s *Server) options(r *http.Request) pipeline.Options {
	opts := s.Options
	if v := r.URL.Query().Get("active"); v != "" {
		if year, err := strconv.Atoi(v); err == nil && s.sel.Has(year) {
			opts.Active = year
		}
	}
	return opts
}
