package io

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/pack"
)

func TestWriteReadJSONRoundTrip(t *testing.T) {
	rec := pack.Record{
		Container: geom.Vec3{X: 100, Y: 100, Z: 100},
		Params:    pack.Params{SupportThreshold: 0.8, Epsilon: 1e-6},
		Placements: []pack.PlacedItem{
			{
				ID:           "crate-1",
				OriginalDims: geom.Vec3{X: 50, Y: 40, Z: 30},
				PlacedDims:   geom.Vec3{X: 50, Y: 40, Z: 30},
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteJSON(rec, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var got pack.Record
	if err := ReadJSON(&buf, &got); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportImportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.json")
	want := map[string]int{"crates": 3}

	if err := ExportJSON(want, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	var got map[string]int
	if err := ImportJSON(path, &got); err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	var v any
	if err := ImportJSON(filepath.Join(t.TempDir(), "absent.json"), &v); err == nil {
		t.Error("ImportJSON() on a missing file should fail")
	}
}
