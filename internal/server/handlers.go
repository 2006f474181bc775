package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cratestack/pkg/cache"
	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pipeline"
	"github.com/matzehuels/cratestack/pkg/render"
	"github.com/matzehuels/cratestack/pkg/store"
	"github.com/matzehuels/cratestack/pkg/support"
)

// maxPackBody bounds the request body for POST /api/pack. Catalogs
// are tens of items; a megabyte is generous.
const maxPackBody = 1 << 20

// packRequest is the body of POST /api/pack. Either a full catalog or
// a bare item list may be provided.
type packRequest struct {
	Catalog *catalog.Catalog `json:"catalog,omitempty"`
	Items   []catalog.Item   `json:"items,omitempty"`
	Options pipeline.Options `json:"options"`
}

// packResponse wraps the persisted run for the client.
type packResponse struct {
	Run   *store.Run     `json:"run"`
	Stats pipeline.Stats `json:"stats"`
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPackBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode request body"))
		return
	}

	cat := req.Catalog
	if cat == nil {
		cat = &catalog.Catalog{Items: req.Items}
	}

	result, err := s.runner.Run(r.Context(), cat, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	run := store.NewRun(result.Record, req.Options.Label)
	run.ID = result.RunID
	if err := s.store.Save(r.Context(), run); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, packResponse{Run: run, Stats: result.Stats})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidConfig, "invalid limit %q", q))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunRecord(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := render.RenderJSON(run.Record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(data)
}

// handleRunGraph renders the support graph of a stored run as SVG
// through Graphviz. ?detailed=1 adds placement data to the node
// labels.
func (s *Server) handleRunGraph(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g := support.Build(run.Record)
	dot := support.ToDOT(g, support.DOTOptions{
		Detailed: r.URL.Query().Get("detailed") == "1",
	})
	svg, err := support.RenderSVG(dot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// handleRunArtifact renders one artifact format for a stored run.
// Artifacts are cached by record hash, so repeat requests for the
// same run hit the runner's cache.
func (s *Server) handleRunArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		data, err := render.RenderJSON(run.Record, render.WithCompact())
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		opts := pipeline.Options{Formats: []string{format}, Title: run.Label}
		artifacts, err := s.runner.Render(r.Context(), run.Record, cache.Hash(data), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(artifacts[format])
	}
}
