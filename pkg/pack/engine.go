package pack

import (
	"context"
	"sort"
	"time"

	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/geom"
	"github.com/matzehuels/cratestack/pkg/observability"
)

// Engine places catalog items into a container using greedy first-fit
// over an extreme-point frontier. An Engine is stateless across runs
// and safe for concurrent use; each Run owns its own frontier and
// record.
type Engine struct {
	cfg Config
}

// New returns an engine for the given configuration, with defaults
// applied.
func New(cfg Config) (*Engine, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run places every item it can and returns the placement record.
// The catalog is normalized first, so quantities expand and invalid
// input aborts before any placement. Identical inputs produce
// identical records. The context is checked between items.
//
// Items that cannot be placed are recorded with a reason rather than
// failing the run.
func (e *Engine) Run(ctx context.Context, cat *catalog.Catalog) (*Record, error) {
	norm, err := cat.Normalize()
	if err != nil {
		return nil, err
	}

	items := e.orderItems(norm.Items)

	hooks := observability.Pack()
	hooks.OnPackStart(ctx, len(items))
	start := time.Now()

	rec := &Record{
		Container: e.cfg.Container,
		Params: Params{
			SupportThreshold: e.cfg.SupportThreshold,
			Epsilon:          e.cfg.Epsilon,
			Order:            e.cfg.Order,
			MaxAttempts:      e.cfg.MaxAttempts,
		},
		Placements: []PlacedItem{},
		Unplaced:   []UnplacedItem{},
	}
	frontier := NewFrontier(e.cfg.Epsilon)
	var boxes []geom.Box // committed, in commit order

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			hooks.OnPackComplete(ctx, len(rec.Placements), len(rec.Unplaced), time.Since(start), err)
			return nil, err
		}

		if !e.fitsEmptyContainer(it) {
			rec.Unplaced = append(rec.Unplaced, UnplacedItem{
				ID: it.ID, Dims: it.Dims, Reason: ReasonExceedsContainer,
			})
			hooks.OnItemUnplaced(ctx, it.ID, ReasonExceedsContainer)
			continue
		}

		pos, orient, attempts, ok := e.findPosition(it, frontier, boxes)
		if !ok {
			rec.Unplaced = append(rec.Unplaced, UnplacedItem{
				ID: it.ID, Dims: it.Dims, Reason: ReasonNoFeasiblePosition,
			})
			hooks.OnItemUnplaced(ctx, it.ID, ReasonNoFeasiblePosition)
			continue
		}

		placed := PlacedItem{
			ID:           it.ID,
			Index:        len(rec.Placements),
			OriginalDims: it.Dims,
			Orientation:  orient,
			PlacedDims:   orient.Apply(it.Dims),
			Position:     pos,
		}
		box := placed.Box()
		rec.Placements = append(rec.Placements, placed)
		boxes = append(boxes, box)
		frontier.Extend(box)
		hooks.OnItemPlaced(ctx, it.ID, placed.Index, attempts)
	}

	rec.Stats = rec.computeStats()
	hooks.OnPackComplete(ctx, len(rec.Placements), len(rec.Unplaced), time.Since(start), nil)
	return rec, nil
}

// orderItems applies the ordering policy without mutating the input.
// The sort is stable, so equal volumes keep catalog order.
func (e *Engine) orderItems(items []catalog.Item) []catalog.Item {
	out := append([]catalog.Item(nil), items...)
	if e.cfg.Order == OrderVolumeDesc {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Volume() > out[j].Volume()
		})
	}
	return out
}

// fitsEmptyContainer reports whether any allowed orientation of the
// item fits an empty container.
func (e *Engine) fitsEmptyContainer(it catalog.Item) bool {
	c, eps := e.cfg.Container, e.cfg.Epsilon
	for _, o := range it.Orientations {
		ext := o.Apply(it.Dims)
		if ext.X <= c.X+eps && ext.Y <= c.Y+eps && ext.Z <= c.Z+eps {
			return true
		}
	}
	return false
}

// findPosition scans frontier points in order, and orientations in the
// item's order within each point, returning the first candidate that
// passes bounds, overlap, and support checks.
func (e *Engine) findPosition(it catalog.Item, frontier *Frontier, placed []geom.Box) (geom.Vec3, catalog.Orientation, int, bool) {
	eps := e.cfg.Epsilon
	attempts := 0

	for _, p := range frontier.Points() {
		for _, o := range it.Orientations {
			if e.cfg.MaxAttempts > 0 && attempts >= e.cfg.MaxAttempts {
				return geom.Vec3{}, "", attempts, false
			}
			attempts++

			box := geom.Box{Min: p, Extents: o.Apply(it.Dims)}
			if !geom.WithinBounds(box, e.cfg.Container, eps) {
				continue
			}
			if overlapsAny(box, placed, eps) {
				continue
			}
			if geom.SupportRatio(box, placed, eps)+eps < e.cfg.SupportThreshold {
				continue
			}
			return p, o, attempts, true
		}
	}
	return geom.Vec3{}, "", attempts, false
}

// overlapsAny reports whether the box overlaps any committed box.
func overlapsAny(b geom.Box, placed []geom.Box, eps float64) bool {
	for _, p := range placed {
		if geom.Overlaps(b, p, eps) {
			return true
		}
	}
	return false
}
