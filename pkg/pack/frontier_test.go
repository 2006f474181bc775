package pack

import (
	"testing"

	"github.com/matzehuels/cratestack/pkg/geom"
)

func TestNewFrontierSeedsOrigin(t *testing.T) {
	f := NewFrontier(DefaultEpsilon)

	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
	if got := f.Points()[0]; got != (geom.Vec3{}) {
		t.Errorf("seed point = %v, want origin", got)
	}
}

func TestFrontierExtend(t *testing.T) {
	f := NewFrontier(DefaultEpsilon)
	f.Extend(geom.Box{Min: geom.Vec3{}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}})

	want := []geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 40, Y: 0, Z: 0},
		{X: 0, Y: 40, Z: 0},
		{X: 0, Y: 0, Z: 40},
	}
	got := f.Points()
	if len(got) != len(want) {
		t.Fatalf("Len() = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFrontierDedupes(t *testing.T) {
	f := NewFrontier(DefaultEpsilon)
	box := geom.Box{Min: geom.Vec3{}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}}

	f.Extend(box)
	f.Extend(box)
	if f.Len() != 4 {
		t.Errorf("Len() after duplicate Extend = %d, want 4", f.Len())
	}

	// Points within tolerance of existing ones are dropped too.
	f.Extend(geom.Box{Min: geom.Vec3{Z: 1e-9}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}})
	if f.Len() != 4 {
		t.Errorf("Len() after near-duplicate Extend = %d, want 4", f.Len())
	}
}

func TestFrontierScanOrder(t *testing.T) {
	f := NewFrontier(DefaultEpsilon)
	f.Extend(geom.Box{Min: geom.Vec3{}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}})
	f.Extend(geom.Box{Min: geom.Vec3{X: 40}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}})
	f.Extend(geom.Box{Min: geom.Vec3{Z: 40}, Extents: geom.Vec3{X: 40, Y: 40, Z: 40}})

	pts := f.Points()
	for i := 1; i < len(pts); i++ {
		if pointLess(pts[i], pts[i-1]) {
			t.Errorf("Points()[%d] = %v sorts before Points()[%d] = %v", i, pts[i], i-1, pts[i-1])
		}
	}

	// Lowest z always scans first.
	if pts[0].Z != 0 {
		t.Errorf("first point z = %v, want 0", pts[0].Z)
	}
	if last := pts[len(pts)-1]; last.Z != 80 {
		t.Errorf("last point z = %v, want 80", last.Z)
	}
}

func TestFrontierPointsIsCopy(t *testing.T) {
	f := NewFrontier(DefaultEpsilon)
	pts := f.Points()
	pts[0] = geom.Vec3{X: 99, Y: 99, Z: 99}

	if got := f.Points()[0]; got != (geom.Vec3{}) {
		t.Errorf("frontier mutated through Points() copy: %v", got)
	}
}
