package geom

import (
	"encoding/json"
	"math"
	"testing"
)

const eps = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVec3JSON(t *testing.T) {
	v := Vec3{X: 1, Y: 2.5, Z: 3}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[1,2.5,3]" {
		t.Errorf("Marshal() = %s, want [1,2.5,3]", data)
	}

	var got Vec3
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != v {
		t.Errorf("roundtrip = %v, want %v", got, v)
	}
}

func TestVec3UnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "too few elements", data: "[1,2]"},
		{name: "too many elements", data: "[1,2,3,4]"},
		{name: "object", data: `{"x":1}`},
		{name: "string element", data: `[1,"a",3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vec3
			if err := json.Unmarshal([]byte(tt.data), &v); err == nil {
				t.Errorf("Unmarshal(%s) error = nil, want error", tt.data)
			}
		})
	}
}

func TestBox(t *testing.T) {
	b := Box{Min: Vec3{X: 1, Y: 2, Z: 3}, Extents: Vec3{X: 10, Y: 20, Z: 30}}

	if got := b.Max(); got != (Vec3{X: 11, Y: 22, Z: 33}) {
		t.Errorf("Max() = %v, want {11 22 33}", got)
	}
	if got := b.Volume(); !almostEqual(got, 6000) {
		t.Errorf("Volume() = %v, want 6000", got)
	}
	if got := b.Top(); !almostEqual(got, 33) {
		t.Errorf("Top() = %v, want 33", got)
	}
	if got := b.Footprint(); got != (Rect{MinX: 1, MinY: 2, MaxX: 11, MaxY: 22}) {
		t.Errorf("Footprint() = %v", got)
	}
}

func TestRectArea(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want float64
	}{
		{name: "unit", r: Rect{0, 0, 1, 1}, want: 1},
		{name: "rectangle", r: Rect{1, 1, 4, 3}, want: 6},
		{name: "degenerate line", r: Rect{0, 0, 5, 0}, want: 0},
		{name: "inverted", r: Rect{5, 5, 0, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Area(); !almostEqual(got, tt.want) {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 15, 15}

	if got := a.Intersect(b).Area(); !almostEqual(got, 25) {
		t.Errorf("overlap area = %v, want 25", got)
	}

	c := Rect{10, 0, 20, 10} // shares an edge with a
	if got := a.Intersect(c).Area(); got != 0 {
		t.Errorf("touching area = %v, want 0", got)
	}

	d := Rect{20, 20, 30, 30}
	if got := a.Intersect(d).Area(); got != 0 {
		t.Errorf("disjoint area = %v, want 0", got)
	}
}

func TestWithinBounds(t *testing.T) {
	container := Vec3{X: 100, Y: 100, Z: 100}

	tests := []struct {
		name string
		box  Box
		want bool
	}{
		{
			name: "interior",
			box:  Box{Min: Vec3{10, 10, 10}, Extents: Vec3{20, 20, 20}},
			want: true,
		},
		{
			name: "exactly fills container",
			box:  Box{Min: Vec3{0, 0, 0}, Extents: Vec3{100, 100, 100}},
			want: true,
		},
		{
			name: "flush against far walls",
			box:  Box{Min: Vec3{80, 80, 80}, Extents: Vec3{20, 20, 20}},
			want: true,
		},
		{
			name: "within tolerance of wall",
			box:  Box{Min: Vec3{0, 0, 0}, Extents: Vec3{100 + eps/2, 100, 100}},
			want: true,
		},
		{
			name: "exceeds x",
			box:  Box{Min: Vec3{90, 0, 0}, Extents: Vec3{20, 10, 10}},
			want: false,
		},
		{
			name: "exceeds z",
			box:  Box{Min: Vec3{0, 0, 90}, Extents: Vec3{10, 10, 20}},
			want: false,
		},
		{
			name: "negative min corner",
			box:  Box{Min: Vec3{-1, 0, 0}, Extents: Vec3{10, 10, 10}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinBounds(tt.box, container, eps); got != tt.want {
				t.Errorf("WithinBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want bool
	}{
		{
			name: "clearly overlapping",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{5, 5, 5}, Extents: Vec3{10, 10, 10}},
			want: true,
		},
		{
			name: "touching faces",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{10, 0, 0}, Extents: Vec3{10, 10, 10}},
			want: false,
		},
		{
			name: "stacked touching tops",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{0, 0, 10}, Extents: Vec3{10, 10, 10}},
			want: false,
		},
		{
			name: "disjoint",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{50, 50, 50}, Extents: Vec3{10, 10, 10}},
			want: false,
		},
		{
			name: "contained",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{2, 2, 2}, Extents: Vec3{2, 2, 2}},
			want: true,
		},
		{
			name: "overlap in two axes only",
			a:    Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}},
			b:    Box{Min: Vec3{5, 5, 20}, Extents: Vec3{10, 10, 10}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b, eps); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a, eps); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectionVolume(t *testing.T) {
	a := Box{Min: Vec3{0, 0, 0}, Extents: Vec3{10, 10, 10}}
	b := Box{Min: Vec3{5, 5, 5}, Extents: Vec3{10, 10, 10}}

	if got := IntersectionVolume(a, b); !almostEqual(got, 125) {
		t.Errorf("IntersectionVolume() = %v, want 125", got)
	}

	c := Box{Min: Vec3{10, 0, 0}, Extents: Vec3{10, 10, 10}}
	if got := IntersectionVolume(a, c); got != 0 {
		t.Errorf("touching volume = %v, want 0", got)
	}
}
