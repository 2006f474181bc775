package pack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cratestack/pkg/catalog"
	cerrors "github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/observability"
)

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func mustRun(t *testing.T, e *Engine, cat *catalog.Catalog) *Record {
	t.Helper()
	rec, err := e.Run(context.Background(), cat)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return rec
}

func cube(id string, side float64) catalog.Item {
	return catalog.Item{ID: id, Dims: geom.Vec3{X: side, Y: side, Z: side}}
}

func item(id string, l, w, h float64) catalog.Item {
	return catalog.Item{ID: id, Dims: geom.Vec3{X: l, Y: w, Z: h}}
}

func TestRunPlacesSingleItemOnFloor(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{cube("box", 20)}})

	if len(rec.Placements) != 1 || len(rec.Unplaced) != 0 {
		t.Fatalf("placed %d / unplaced %d, want 1/0", len(rec.Placements), len(rec.Unplaced))
	}

	p := rec.Placements[0]
	if p.Position != (geom.Vec3{}) {
		t.Errorf("Position = %v, want origin", p.Position)
	}
	if p.Orientation != catalog.OrientationLWH {
		t.Errorf("Orientation = %v, want lwh", p.Orientation)
	}
	if p.Index != 0 {
		t.Errorf("Index = %d, want 0", p.Index)
	}
}

func TestRunStacksOnFullBase(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		item("slab", 100, 100, 10),
		item("block", 50, 50, 10),
	}})

	if len(rec.Placements) != 2 {
		t.Fatalf("placed %d, want 2", len(rec.Placements))
	}

	// The slab covers the whole floor, so the block must go on top.
	block := rec.Placements[1]
	if block.ID != "block" {
		t.Fatalf("Placements[1].ID = %q, want block", block.ID)
	}
	if block.Position != (geom.Vec3{Z: 10}) {
		t.Errorf("block Position = %v, want (0, 0, 10)", block.Position)
	}
}

func TestRunReportsExceedsContainer(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		item("beam", 150, 10, 10),
		cube("box", 20),
	}})

	if len(rec.Placements) != 1 || rec.Placements[0].ID != "box" {
		t.Fatalf("Placements = %+v, want just box", rec.Placements)
	}
	if len(rec.Unplaced) != 1 {
		t.Fatalf("unplaced %d, want 1", len(rec.Unplaced))
	}
	u := rec.Unplaced[0]
	if u.ID != "beam" || u.Reason != ReasonExceedsContainer {
		t.Errorf("Unplaced[0] = %+v, want beam/%s", u, ReasonExceedsContainer)
	}
}

func TestRunReportsNoFeasiblePosition(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		cube("filler", 100),
		cube("extra", 10),
	}})

	if len(rec.Placements) != 1 || rec.Placements[0].ID != "filler" {
		t.Fatalf("Placements = %+v, want just filler", rec.Placements)
	}
	// The extra cube fits an empty container, so this is exhaustion,
	// not a size problem.
	u := rec.Unplaced[0]
	if u.ID != "extra" || u.Reason != ReasonNoFeasiblePosition {
		t.Errorf("Unplaced[0] = %+v, want extra/%s", u, ReasonNoFeasiblePosition)
	}
}

func TestRunDeterministic(t *testing.T) {
	cat := &catalog.Catalog{Items: []catalog.Item{
		{ID: "box", Dims: geom.Vec3{X: 40, Y: 40, Z: 40}, Quantity: 20},
	}}
	e := mustEngine(t, DefaultConfig())

	first := mustRun(t, e, cat)

	if first.Stats.PlacedCount != 8 || first.Stats.UnplacedCount != 12 {
		t.Fatalf("placed %d / unplaced %d, want 8/12",
			first.Stats.PlacedCount, first.Stats.UnplacedCount)
	}

	// Two full layers of four cubes each.
	wantPos := []geom.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 40, Y: 0, Z: 0}, {X: 0, Y: 40, Z: 0}, {X: 40, Y: 40, Z: 0},
		{X: 0, Y: 0, Z: 40}, {X: 40, Y: 0, Z: 40}, {X: 0, Y: 40, Z: 40}, {X: 40, Y: 40, Z: 40},
	}
	for i, p := range first.Placements {
		if p.Position != wantPos[i] {
			t.Errorf("Placements[%d].Position = %v, want %v", i, p.Position, wantPos[i])
		}
	}

	for _, u := range first.Unplaced {
		if u.Reason != ReasonNoFeasiblePosition {
			t.Errorf("Unplaced %q reason = %q, want %s", u.ID, u.Reason, ReasonNoFeasiblePosition)
		}
	}

	if err := Verify(first); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	second := mustRun(t, e, cat)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reruns differ (-first +second):\n%s", diff)
	}
}

func TestRunSupportThreshold(t *testing.T) {
	cat := &catalog.Catalog{Items: []catalog.Item{
		item("base", 50, 50, 20),
		item("top", 100, 100, 20),
	}}

	tests := []struct {
		name       string
		threshold  float64
		wantPlaced int
	}{
		// The top slab only gets a quarter of its footprint onto the
		// base, so full support rejects it.
		{name: "full support required", threshold: 1.0, wantPlaced: 1},
		{name: "partial support allowed", threshold: 0.2, wantPlaced: 2},
		{name: "threshold exactly at ratio", threshold: 0.25, wantPlaced: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEngine(t, Config{
				Container:        geom.Vec3{X: 100, Y: 100, Z: 100},
				SupportThreshold: tt.threshold,
				Order:            OrderCatalog,
			})
			rec := mustRun(t, e, cat)

			if len(rec.Placements) != tt.wantPlaced {
				t.Fatalf("placed %d, want %d", len(rec.Placements), tt.wantPlaced)
			}
			if tt.wantPlaced == 2 {
				if got := rec.Placements[1].Position; got != (geom.Vec3{Z: 20}) {
					t.Errorf("top Position = %v, want (0, 0, 20)", got)
				}
			} else {
				u := rec.Unplaced[0]
				if u.ID != "top" || u.Reason != ReasonNoFeasiblePosition {
					t.Errorf("Unplaced[0] = %+v, want top/%s", u, ReasonNoFeasiblePosition)
				}
			}
		})
	}
}

func TestRunOrderPolicies(t *testing.T) {
	cat := &catalog.Catalog{Items: []catalog.Item{
		cube("small", 10),
		cube("big", 50),
	}}

	t.Run("volume-desc", func(t *testing.T) {
		e := mustEngine(t, DefaultConfig())
		rec := mustRun(t, e, cat)

		if rec.Placements[0].ID != "big" || rec.Placements[0].Position != (geom.Vec3{}) {
			t.Errorf("Placements[0] = %+v, want big at origin", rec.Placements[0])
		}
		if rec.Placements[1].ID != "small" || rec.Placements[1].Position != (geom.Vec3{X: 50}) {
			t.Errorf("Placements[1] = %+v, want small at (50, 0, 0)", rec.Placements[1])
		}
	})

	t.Run("catalog", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Order = OrderCatalog
		e := mustEngine(t, cfg)
		rec := mustRun(t, e, cat)

		if rec.Placements[0].ID != "small" || rec.Placements[0].Position != (geom.Vec3{}) {
			t.Errorf("Placements[0] = %+v, want small at origin", rec.Placements[0])
		}
		if rec.Placements[1].ID != "big" || rec.Placements[1].Position != (geom.Vec3{X: 10}) {
			t.Errorf("Placements[1] = %+v, want big at (10, 0, 0)", rec.Placements[1])
		}
	})
}

func TestRunVolumeTiesKeepCatalogOrder(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		item("a", 10, 20, 30),
		item("b", 30, 20, 10),
	}})

	if rec.Placements[0].ID != "a" || rec.Placements[1].ID != "b" {
		t.Errorf("order = [%s, %s], want [a, b]",
			rec.Placements[0].ID, rec.Placements[1].ID)
	}
}

func TestRunMaxAttempts(t *testing.T) {
	cat := &catalog.Catalog{Items: []catalog.Item{
		item("slab", 100, 100, 10),
		item("block", 50, 50, 10),
	}}

	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	e := mustEngine(t, cfg)
	rec := mustRun(t, e, cat)

	// The block's first candidate collides with the slab and the cap
	// forbids trying further ones.
	if len(rec.Placements) != 1 || rec.Placements[0].ID != "slab" {
		t.Fatalf("Placements = %+v, want just slab", rec.Placements)
	}
	if u := rec.Unplaced[0]; u.ID != "block" || u.Reason != ReasonNoFeasiblePosition {
		t.Errorf("Unplaced[0] = %+v, want block/%s", u, ReasonNoFeasiblePosition)
	}

	// Unbounded attempts place it on top.
	e = mustEngine(t, DefaultConfig())
	rec = mustRun(t, e, cat)
	if len(rec.Placements) != 2 || rec.Placements[1].Position != (geom.Vec3{Z: 10}) {
		t.Errorf("unbounded run Placements = %+v, want block at (0, 0, 10)", rec.Placements)
	}
}

func TestRunOrientationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Container = geom.Vec3{X: 100, Y: 100, Z: 10}

	t.Run("rotates to fit", func(t *testing.T) {
		e := mustEngine(t, cfg)
		rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
			item("plank", 10, 10, 50),
		}})

		if len(rec.Placements) != 1 {
			t.Fatalf("placed %d, want 1", len(rec.Placements))
		}
		p := rec.Placements[0]
		if p.Orientation != catalog.OrientationLHW {
			t.Errorf("Orientation = %v, want lhw", p.Orientation)
		}
		if p.PlacedDims != (geom.Vec3{X: 10, Y: 50, Z: 10}) {
			t.Errorf("PlacedDims = %v, want (10, 50, 10)", p.PlacedDims)
		}
	})

	t.Run("restricted orientations cannot fit", func(t *testing.T) {
		e := mustEngine(t, cfg)
		rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
			{
				ID:           "plank",
				Dims:         geom.Vec3{X: 10, Y: 10, Z: 50},
				Orientations: []catalog.Orientation{catalog.OrientationLWH},
			},
		}})

		if len(rec.Unplaced) != 1 || rec.Unplaced[0].Reason != ReasonExceedsContainer {
			t.Errorf("Unplaced = %+v, want plank/%s", rec.Unplaced, ReasonExceedsContainer)
		}
	})
}

func TestRunStats(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	rec := mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		cube("a", 40),
		cube("b", 40),
	}})

	s := rec.Stats
	if s.PlacedCount != 2 || s.UnplacedCount != 0 {
		t.Errorf("counts = %d/%d, want 2/0", s.PlacedCount, s.UnplacedCount)
	}
	if s.PlacedVolume != 128000 {
		t.Errorf("PlacedVolume = %v, want 128000", s.PlacedVolume)
	}
	if s.ContainerVolume != 1e6 {
		t.Errorf("ContainerVolume = %v, want 1e6", s.ContainerVolume)
	}
	if s.Utilization != 0.128 {
		t.Errorf("Utilization = %v, want 0.128", s.Utilization)
	}
	if s.MaxHeight != 40 {
		t.Errorf("MaxHeight = %v, want 40", s.MaxHeight)
	}
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := mustEngine(t, DefaultConfig())
	rec, err := e.Run(ctx, &catalog.Catalog{Items: []catalog.Item{cube("box", 20)}})

	if rec != nil {
		t.Errorf("Run() record = %+v, want nil", rec)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunInvalidCatalog(t *testing.T) {
	e := mustEngine(t, DefaultConfig())
	_, err := e.Run(context.Background(), &catalog.Catalog{Items: []catalog.Item{
		{ID: "bad", Dims: geom.Vec3{X: 0, Y: 10, Z: 10}},
	}})

	if !cerrors.Is(err, cerrors.ErrCodeInvalidItem) {
		t.Errorf("Run() code = %v, want %v", cerrors.GetCode(err), cerrors.ErrCodeInvalidItem)
	}
}

type recordingHooks struct {
	starts, completes int
	placed            []string
	unplaced          map[string]string
	attempts          map[string]int
}

func (r *recordingHooks) OnPackStart(_ context.Context, n int) { r.starts++ }
func (r *recordingHooks) OnItemPlaced(_ context.Context, id string, index, attempts int) {
	r.placed = append(r.placed, id)
	r.attempts[id] = attempts
}
func (r *recordingHooks) OnItemUnplaced(_ context.Context, id, reason string) {
	r.unplaced[id] = reason
}
func (r *recordingHooks) OnPackComplete(_ context.Context, placed, unplaced int, d time.Duration, err error) {
	r.completes++
}

func TestRunFiresHooks(t *testing.T) {
	defer observability.Reset()

	hooks := &recordingHooks{unplaced: map[string]string{}, attempts: map[string]int{}}
	observability.SetPackHooks(hooks)

	e := mustEngine(t, DefaultConfig())
	mustRun(t, e, &catalog.Catalog{Items: []catalog.Item{
		item("beam", 150, 10, 10),
		cube("box", 20),
	}})

	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("starts/completes = %d/%d, want 1/1", hooks.starts, hooks.completes)
	}
	if len(hooks.placed) != 1 || hooks.placed[0] != "box" {
		t.Errorf("placed = %v, want [box]", hooks.placed)
	}
	if hooks.attempts["box"] != 1 {
		t.Errorf("attempts[box] = %d, want 1", hooks.attempts["box"])
	}
	if hooks.unplaced["beam"] != ReasonExceedsContainer {
		t.Errorf("unplaced[beam] = %q, want %s", hooks.unplaced["beam"], ReasonExceedsContainer)
	}
}
