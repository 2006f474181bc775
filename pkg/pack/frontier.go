package pack

import (
	"math"
	"sort"

	"github.com/matzehuels/cratestack/pkg/geom"
)

// Frontier is the set of candidate anchor positions for the next
// placement. It seeds with the container origin and grows as boxes
// commit; points are never removed. Infeasible points are simply
// skipped during the scan, since a later, smaller item may still fit
// there.
type Frontier struct {
	eps    float64
	points []geom.Vec3 // kept sorted by (z, y, x)
}

// NewFrontier returns a frontier seeded with the origin.
func NewFrontier(eps float64) *Frontier {
	f := &Frontier{eps: eps}
	f.add(geom.Vec3{})
	return f
}

// Len returns the number of candidate points.
func (f *Frontier) Len() int {
	return len(f.points)
}

// Points returns the candidate positions in scan order: ascending z,
// then y, then x. The returned slice is a copy.
func (f *Frontier) Points() []geom.Vec3 {
	return append([]geom.Vec3(nil), f.points...)
}

// Extend adds the three successor points a committed box generates:
// one past it along each axis, anchored at the box's minimum corner.
func (f *Frontier) Extend(b geom.Box) {
	m := b.Max()
	f.add(geom.Vec3{X: m.X, Y: b.Min.Y, Z: b.Min.Z})
	f.add(geom.Vec3{X: b.Min.X, Y: m.Y, Z: b.Min.Z})
	f.add(geom.Vec3{X: b.Min.X, Y: b.Min.Y, Z: m.Z})
}

// add inserts a point unless an existing point coincides within eps
// on all three axes.
func (f *Frontier) add(p geom.Vec3) {
	for _, q := range f.points {
		if math.Abs(q.X-p.X) <= f.eps &&
			math.Abs(q.Y-p.Y) <= f.eps &&
			math.Abs(q.Z-p.Z) <= f.eps {
			return
		}
	}

	i := sort.Search(len(f.points), func(i int) bool {
		return pointLess(p, f.points[i])
	})
	f.points = append(f.points, geom.Vec3{})
	copy(f.points[i+1:], f.points[i:])
	f.points[i] = p
}

// pointLess orders points by z, then y, then x.
func pointLess(a, b geom.Vec3) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
