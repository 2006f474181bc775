// Package server implements the Cratestack HTTP API.
//
// The API exposes the packing pipeline and the run store over chi:
// POST /api/pack runs the pipeline and persists the result, and the
// /api/runs endpoints list, fetch, delete, and re-render stored runs.
// All error responses are JSON objects of the form {"error": "..."}.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cratestack/pkg/buildinfo"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pipeline"
	"github.com/matzehuels/cratestack/pkg/store"
)

// Defaults for server timeouts.
const (
	DefaultRequestTimeout  = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration // zero means DefaultRequestTimeout
	Runner         *pipeline.Runner
	Store          store.Store
	Logger         *log.Logger
}

// Server serves the packing API.
type Server struct {
	addr   string
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server with its routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		addr:   opts.Addr,
		runner: opts.Runner,
		store:  opts.Store,
		logger: opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/pack", s.handlePack)
		r.Get("/runs", s.handleListRuns)
		r.Route("/runs/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Delete("/", s.handleDeleteRun)
			r.Get("/record", s.handleRunRecord)
			r.Get("/replay", s.handleRunArtifact(pipeline.FormatHTML, "text/html; charset=utf-8"))
			r.Get("/charts", s.handleRunArtifact(pipeline.FormatCharts, "text/html; charset=utf-8"))
			r.Get("/svg", s.handleRunArtifact(pipeline.FormatSVG, "image/svg+xml"))
			r.Get("/graph", s.handleRunGraph)
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request through the structured logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a JSON error response. Configuration
// errors are the client's fault; missing runs are 404; everything
// else is a 500 with the detail kept out of the response body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := errors.UserMessage(err)
	switch {
	case errors.IsConfiguration(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeRunNotFound) || errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
