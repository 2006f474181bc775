package catalog

import (
	"strings"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// Orientation names one of the six axis-aligned rotations of a box,
// as a permutation of its length, width, and height.
type Orientation string

// The six axis-aligned orientations. AllOrientations fixes the order
// in which the engine tries them.
const (
	OrientationLWH Orientation = "lwh"
	OrientationLHW Orientation = "lhw"
	OrientationWLH Orientation = "wlh"
	OrientationWHL Orientation = "whl"
	OrientationHLW Orientation = "hlw"
	OrientationHWL Orientation = "hwl"
)

// AllOrientations returns every orientation in the engine's trial order.
func AllOrientations() []Orientation {
	return []Orientation{
		OrientationLWH,
		OrientationLHW,
		OrientationWLH,
		OrientationWHL,
		OrientationHLW,
		OrientationHWL,
	}
}

// ParseOrientation parses an orientation name, case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case OrientationLWH, OrientationLHW, OrientationWLH,
		OrientationWHL, OrientationHLW, OrientationHWL:
		return o, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOrientation, "unknown orientation %q", s)
}

// Apply permutes item dimensions (length, width, height) into placed
// extents along x, y, and z.
func (o Orientation) Apply(dims geom.Vec3) geom.Vec3 {
	l, w, h := dims.X, dims.Y, dims.Z
	switch o {
	case OrientationLWH:
		return geom.Vec3{X: l, Y: w, Z: h}
	case OrientationLHW:
		return geom.Vec3{X: l, Y: h, Z: w}
	case OrientationWLH:
		return geom.Vec3{X: w, Y: l, Z: h}
	case OrientationWHL:
		return geom.Vec3{X: w, Y: h, Z: l}
	case OrientationHLW:
		return geom.Vec3{X: h, Y: l, Z: w}
	case OrientationHWL:
		return geom.Vec3{X: h, Y: w, Z: l}
	}
	return dims
}
