package pack

import (
	"math"

	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// Verify re-checks a finished record against the invariants the engine
// guarantees:
//
//   - placement indices form the commit sequence 0..n-1
//   - placed dims match the recorded orientation applied to the
//     original dims
//   - every placement lies within container bounds
//   - no two placements overlap
//   - every placement meets the support threshold against the
//     placements committed before it
//   - unplaced reasons are known
//   - stats match the placement lists
//
// Verification is self-contained: everything needed is carried in the
// record itself, so records read back from a cache or store can be
// re-verified before use. The first violation is returned as an
// INVARIANT_VIOLATION error naming the offending placements.
func Verify(r *Record) error {
	if r == nil {
		return errors.New(errors.ErrCodeInvariantViolation, "record is nil")
	}

	eps := r.Params.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	threshold := r.Params.SupportThreshold
	if threshold <= 0 {
		threshold = DefaultSupportThreshold
	}

	boxes := make([]geom.Box, 0, len(r.Placements))
	for i, p := range r.Placements {
		if p.Index != i {
			return errors.New(errors.ErrCodeInvariantViolation,
				"placement %q has index %d, want %d", p.ID, p.Index, i)
		}

		if _, err := catalog.ParseOrientation(string(p.Orientation)); err != nil {
			return errors.Wrap(errors.ErrCodeInvariantViolation, err, "placement %q", p.ID)
		}

		if p.PlacedDims.X <= 0 || p.PlacedDims.Y <= 0 || p.PlacedDims.Z <= 0 {
			return errors.New(errors.ErrCodeInvariantViolation,
				"placement %q has non-positive extents", p.ID)
		}

		if want := p.Orientation.Apply(p.OriginalDims); !vecEqual(want, p.PlacedDims, eps) {
			return errors.New(errors.ErrCodeInvariantViolation,
				"placement %q dims %v do not match orientation %s of %v",
				p.ID, p.PlacedDims, p.Orientation, p.OriginalDims)
		}

		box := p.Box()
		if !geom.WithinBounds(box, r.Container, eps) {
			return errors.New(errors.ErrCodeInvariantViolation,
				"placement %q exceeds container bounds", p.ID)
		}

		for j, prev := range boxes {
			if geom.Overlaps(box, prev, eps) {
				return errors.New(errors.ErrCodeInvariantViolation,
					"placements %q and %q overlap", r.Placements[j].ID, p.ID)
			}
		}

		if ratio := geom.SupportRatio(box, boxes, eps); ratio+eps < threshold {
			return errors.New(errors.ErrCodeInvariantViolation,
				"placement %q support %.3f below threshold %.3f", p.ID, ratio, threshold)
		}

		boxes = append(boxes, box)
	}

	for _, u := range r.Unplaced {
		if u.Reason != ReasonExceedsContainer && u.Reason != ReasonNoFeasiblePosition {
			return errors.New(errors.ErrCodeInvariantViolation,
				"unplaced %q has unknown reason %q", u.ID, u.Reason)
		}
	}

	return checkStats(r.Stats, r.computeStats(), eps)
}

func vecEqual(a, b geom.Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps
}

func checkStats(got, want Stats, eps float64) error {
	if got.PlacedCount != want.PlacedCount || got.UnplacedCount != want.UnplacedCount {
		return errors.New(errors.ErrCodeInvariantViolation,
			"stats count %d placed / %d unplaced, record has %d/%d",
			got.PlacedCount, got.UnplacedCount, want.PlacedCount, want.UnplacedCount)
	}
	if math.Abs(got.PlacedVolume-want.PlacedVolume) > eps ||
		math.Abs(got.ContainerVolume-want.ContainerVolume) > eps ||
		math.Abs(got.Utilization-want.Utilization) > eps ||
		math.Abs(got.MaxHeight-want.MaxHeight) > eps {
		return errors.New(errors.ErrCodeInvariantViolation,
			"stats do not match placements")
	}
	return nil
}
