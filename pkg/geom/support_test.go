package geom

import "testing"

func TestSupportRatio(t *testing.T) {
	tests := []struct {
		name   string
		box    Box
		placed []Box
		want   float64
	}{
		{
			name: "floor gives full support",
			box:  Box{Min: Vec3{0, 0, 0}, Extents: Vec3{50, 50, 50}},
			want: 1.0,
		},
		{
			name: "floor within tolerance",
			box:  Box{Min: Vec3{0, 0, eps / 2}, Extents: Vec3{50, 50, 50}},
			want: 1.0,
		},
		{
			name: "airborne with no supporters",
			box:  Box{Min: Vec3{0, 0, 30}, Extents: Vec3{50, 50, 50}},
			want: 0,
		},
		{
			name: "fully supported by one box",
			box:  Box{Min: Vec3{10, 10, 20}, Extents: Vec3{50, 50, 30}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{100, 100, 20}},
			},
			want: 1.0,
		},
		{
			name: "quarter supported",
			box:  Box{Min: Vec3{0, 0, 20}, Extents: Vec3{100, 100, 30}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{50, 50, 20}},
			},
			want: 0.25,
		},
		{
			name: "overlapping supporters counted once",
			box:  Box{Min: Vec3{0, 0, 10}, Extents: Vec3{100, 100, 5}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{60, 100, 10}},
				{Min: Vec3{40, 0, 0}, Extents: Vec3{60, 100, 10}},
			},
			want: 1.0,
		},
		{
			name: "adjacent supporters sum",
			box:  Box{Min: Vec3{0, 0, 10}, Extents: Vec3{100, 100, 5}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{50, 100, 10}},
				{Min: Vec3{50, 0, 0}, Extents: Vec3{50, 100, 10}},
			},
			want: 1.0,
		},
		{
			name: "gap between supporters",
			box:  Box{Min: Vec3{0, 0, 10}, Extents: Vec3{100, 100, 5}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{40, 100, 10}},
				{Min: Vec3{60, 0, 0}, Extents: Vec3{40, 100, 10}},
			},
			want: 0.8,
		},
		{
			name: "supporter at wrong height ignored",
			box:  Box{Min: Vec3{0, 0, 20}, Extents: Vec3{50, 50, 10}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{50, 50, 10}},
			},
			want: 0,
		},
		{
			name: "supporter top within tolerance counts",
			box:  Box{Min: Vec3{0, 0, 10}, Extents: Vec3{50, 50, 10}},
			placed: []Box{
				{Min: Vec3{0, 0, 0}, Extents: Vec3{50, 50, 10 + eps/2}},
			},
			want: 1.0,
		},
		{
			name: "supporter beside candidate ignored",
			box:  Box{Min: Vec3{0, 0, 10}, Extents: Vec3{50, 50, 10}},
			placed: []Box{
				{Min: Vec3{50, 0, 0}, Extents: Vec3{50, 50, 10}},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SupportRatio(tt.box, tt.placed, eps); !almostEqual(got, tt.want) {
				t.Errorf("SupportRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnionArea(t *testing.T) {
	tests := []struct {
		name  string
		rects []Rect
		want  float64
	}{
		{
			name:  "single",
			rects: []Rect{{0, 0, 10, 10}},
			want:  100,
		},
		{
			name:  "disjoint",
			rects: []Rect{{0, 0, 10, 10}, {20, 20, 30, 30}},
			want:  200,
		},
		{
			name:  "overlapping",
			rects: []Rect{{0, 0, 10, 10}, {5, 0, 15, 10}},
			want:  150,
		},
		{
			name:  "contained",
			rects: []Rect{{0, 0, 10, 10}, {2, 2, 5, 5}},
			want:  100,
		},
		{
			name:  "cross",
			rects: []Rect{{0, 4, 10, 6}, {4, 0, 6, 10}},
			want:  36,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unionArea(tt.rects); !almostEqual(got, tt.want) {
				t.Errorf("unionArea() = %v, want %v", got, tt.want)
			}
		})
	}
}
