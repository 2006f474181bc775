package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratestack/pkg/pipeline"
	"github.com/matzehuels/cratestack/pkg/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(Options{
		Addr:   ":0",
		Runner: pipeline.NewRunner(nil, nil, logger),
		Store:  st,
		Logger: logger,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func packOne(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/pack", map[string]any{
		"items": []map[string]any{
			{"id": "crate", "dims": []float64{50, 50, 50}},
		},
		"options": map[string]any{"label": "test run"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/pack status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Run struct {
			ID string `json:"id"`
		} `json:"run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Run.ID == "" {
		t.Fatal("pack response has no run id")
	}
	return resp.Run.ID
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, testServer(t).Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body)
	}
}

func TestPackAndFetchRun(t *testing.T) {
	h := testServer(t).Handler()
	id := packOne(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/runs/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET run status = %d", rec.Code)
	}
	var run store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Label != "test run" {
		t.Errorf("Label = %q, want %q", run.Label, "test run")
	}
	if run.Record == nil || run.Record.Stats.PlacedCount != 1 {
		t.Errorf("run record not packed: %+v", run.Record)
	}
}

func TestPackInvalidCatalog(t *testing.T) {
	h := testServer(t).Handler()
	rec := doJSON(t, h, http.MethodPost, "/api/pack", map[string]any{
		"items": []map[string]any{
			{"id": "flat", "dims": []float64{0, 10, 10}},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("body = %s, want an error object", rec.Body)
	}
}

func TestListRuns(t *testing.T) {
	h := testServer(t).Handler()
	packOne(t, h)
	packOne(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/runs?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Runs []store.Summary `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Errorf("len(runs) = %d, want 1 (limit)", len(resp.Runs))
	}
}

func TestDeleteRun(t *testing.T) {
	h := testServer(t).Handler()
	id := packOne(t, h)

	if rec := doJSON(t, h, http.MethodDelete, "/api/runs/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/runs/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	rec := doJSON(t, testServer(t).Handler(), http.MethodGet, "/api/runs/no-such-run", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRunRecordAndArtifacts(t *testing.T) {
	h := testServer(t).Handler()
	id := packOne(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/runs/"+id+"/record", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("record status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"placements"`) {
		t.Errorf("record body missing placements: %s", rec.Body)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/runs/"+id+"/svg", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("svg status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("svg body does not look like SVG")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/runs/"+id+"/replay", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("replay body does not look like HTML")
	}
}

func TestRunGraph(t *testing.T) {
	srv := testServer(t)
	id := packOne(t, srv.Handler())

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/runs/"+id+"/graph", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET graph status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("graph response should contain SVG markup")
	}
}
