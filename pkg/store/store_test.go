package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// testRun builds a stored run with one placement and one rejection.
func testRun(id string, created time.Time, label string) *Run {
	rec := &pack.Record{
		Container: geom.Vec3{X: 100, Y: 100, Z: 100},
		Params: pack.Params{
			SupportThreshold: 1,
			Epsilon:          1e-6,
			Order:            pack.OrderVolumeDesc,
		},
		Placements: []pack.PlacedItem{{
			ID:           "crate-1",
			Index:        0,
			OriginalDims: geom.Vec3{X: 40, Y: 40, Z: 40},
			Orientation:  catalog.OrientationLWH,
			PlacedDims:   geom.Vec3{X: 40, Y: 40, Z: 40},
		}},
		Unplaced: []pack.UnplacedItem{{
			ID:     "beam",
			Dims:   geom.Vec3{X: 150, Y: 10, Z: 10},
			Reason: pack.ReasonExceedsContainer,
		}},
		Stats: pack.Stats{
			PlacedCount:     1,
			UnplacedCount:   1,
			PlacedVolume:    64000,
			ContainerVolume: 1e6,
			Utilization:     0.064,
			MaxHeight:       40,
		},
	}
	return &Run{ID: id, CreatedAt: created, Label: label, Record: rec}
}

func TestNewRun(t *testing.T) {
	rec := testRun("x", time.Now(), "").Record

	r1 := NewRun(rec, "pallet load")
	if r1.ID == "" {
		t.Error("NewRun should assign an ID")
	}
	if r1.Label != "pallet load" {
		t.Errorf("Label = %q, want %q", r1.Label, "pallet load")
	}
	if r1.Record != rec {
		t.Error("NewRun should keep the record")
	}
	if time.Since(r1.CreatedAt) > 5*time.Second {
		t.Errorf("CreatedAt = %v, want recent", r1.CreatedAt)
	}

	r2 := NewRun(rec, "")
	if r1.ID == r2.ID {
		t.Error("NewRun should assign unique IDs")
	}
}

func TestSummarize(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("run-1", created, "first")

	sum := run.Summarize()
	if sum.ID != "run-1" || sum.Label != "first" || !sum.CreatedAt.Equal(created) {
		t.Errorf("Summarize() = %+v, want identity fields copied", sum)
	}
	if sum.PlacedCount != 1 || sum.UnplacedCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", sum.PlacedCount, sum.UnplacedCount)
	}
	if sum.Utilization != 0.064 {
		t.Errorf("Utilization = %v, want 0.064", sum.Utilization)
	}

	// Runs without a record summarize to zeros.
	empty := &Run{ID: "run-2", CreatedAt: created}
	if got := empty.Summarize(); got.PlacedCount != 0 || got.Utilization != 0 {
		t.Errorf("Summarize() of empty run = %+v, want zero stats", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "file", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", s)
	}
	s.Close()

	s, err = Open(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "runs.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLiteStore", s)
	}
	s.Close()

	// Empty backend defaults to file.
	s, err = Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(default) error: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(default) = %T, want *FileStore", s)
	}
	s.Close()

	if _, err := Open(ctx, Options{Backend: "dynamo"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(dynamo) error = %v, want INVALID_CONFIG", err)
	}
}
