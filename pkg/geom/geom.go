// Package geom provides axis-aligned geometric primitives for placement
// validation: vectors, boxes, footprint rectangles, and the bounds,
// overlap, and support checks built on them.
//
// All comparisons use an explicit tolerance ε passed by the caller.
// Touching faces are never an overlap, and a box ending within ε of a
// container wall is still in bounds.
package geom

import (
	"encoding/json"
	"fmt"
)

// Vec3 is a point or extent in container coordinates.
// The container origin is a bottom corner; x and y span the base and
// z points up.
type Vec3 struct {
	X float64 `bson:"x"`
	Y float64 `bson:"y"`
	Z float64 `bson:"z"`
}

// Add returns the component-wise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// MarshalJSON encodes the vector as a three-element array [x, y, z].
func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

// UnmarshalJSON decodes a three-element array [x, y, z].
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("vec3: expected [x, y, z] array: %w", err)
	}
	if len(arr) != 3 {
		return fmt.Errorf("vec3: expected 3 elements, got %d", len(arr))
	}
	v.X, v.Y, v.Z = arr[0], arr[1], arr[2]
	return nil
}

// Box is an axis-aligned box anchored at its minimum corner.
// Extents are strictly positive for any validated item.
type Box struct {
	Min     Vec3
	Extents Vec3
}

// Max returns the maximum corner of the box.
func (b Box) Max() Vec3 {
	return b.Min.Add(b.Extents)
}

// Volume returns the box volume.
func (b Box) Volume() float64 {
	return b.Extents.X * b.Extents.Y * b.Extents.Z
}

// Top returns the z coordinate of the box's top face.
func (b Box) Top() float64 {
	return b.Min.Z + b.Extents.Z
}

// Footprint returns the box's projection onto the xy plane.
func (b Box) Footprint() Rect {
	return Rect{
		MinX: b.Min.X,
		MinY: b.Min.Y,
		MaxX: b.Min.X + b.Extents.X,
		MaxY: b.Min.Y + b.Extents.Y,
	}
}

// Rect is an axis-aligned rectangle in the xy plane.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Area returns the rectangle area, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.MaxX <= r.MinX || r.MaxY <= r.MinY {
		return 0
	}
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// Intersect returns the intersection of two rectangles.
// The result may be degenerate; check Area.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// WithinBounds reports whether the box lies entirely inside a container
// of the given extents, anchored at the origin. Coordinates within eps
// of a wall still count as inside.
func WithinBounds(b Box, container Vec3, eps float64) bool {
	if b.Min.X < -eps || b.Min.Y < -eps || b.Min.Z < -eps {
		return false
	}
	m := b.Max()
	return m.X <= container.X+eps && m.Y <= container.Y+eps && m.Z <= container.Z+eps
}

// IntersectionVolume returns the volume shared by two boxes, 0 if they
// are disjoint or merely touching.
func IntersectionVolume(a, b Box) float64 {
	am, bm := a.Max(), b.Max()
	dx := min(am.X, bm.X) - max(a.Min.X, b.Min.X)
	dy := min(am.Y, bm.Y) - max(a.Min.Y, b.Min.Y)
	dz := min(am.Z, bm.Z) - max(a.Min.Z, b.Min.Z)
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return 0
	}
	return dx * dy * dz
}

// Overlaps reports whether two boxes share more than negligible volume.
// Shared volume of at most eps³ counts as touching, not overlap.
func Overlaps(a, b Box, eps float64) bool {
	return IntersectionVolume(a, b) > eps*eps*eps
}
