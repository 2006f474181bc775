package geom

import "sort"

// SupportRatio returns the fraction of a box's footprint resting on
// support. A box on the floor (bottom within eps of z=0) is fully
// supported. Otherwise support comes from placed boxes whose top face
// is level with the candidate's bottom (within eps); the supported
// area is the union of footprint intersections, so stacked or
// overlapping supporters are not counted twice.
func SupportRatio(b Box, placed []Box, eps float64) float64 {
	if b.Min.Z <= eps {
		return 1.0
	}

	total := b.Footprint().Area()
	if total <= 0 {
		return 0
	}

	var overlaps []Rect
	for _, p := range placed {
		if p.Top() < b.Min.Z-eps || p.Top() > b.Min.Z+eps {
			continue
		}
		r := p.Footprint().Intersect(b.Footprint())
		if r.Area() > 0 {
			overlaps = append(overlaps, r)
		}
	}
	if len(overlaps) == 0 {
		return 0
	}

	return unionArea(overlaps) / total
}

// unionArea computes the area of the union of rectangles by sweeping
// compressed x coordinates and merging y intervals per strip.
func unionArea(rects []Rect) float64 {
	xs := make([]float64, 0, len(rects)*2)
	for _, r := range rects {
		xs = append(xs, r.MinX, r.MaxX)
	}
	sort.Float64s(xs)

	var area float64
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		if x1 <= x0 {
			continue
		}

		// y intervals of rectangles spanning this strip
		var spans [][2]float64
		for _, r := range rects {
			if r.MinX <= x0 && r.MaxX >= x1 {
				spans = append(spans, [2]float64{r.MinY, r.MaxY})
			}
		}
		if len(spans) == 0 {
			continue
		}
		sort.Slice(spans, func(a, b int) bool { return spans[a][0] < spans[b][0] })

		var covered, end float64
		end = spans[0][0] // nothing covered below the first span
		for _, s := range spans {
			if s[0] > end {
				end = s[0]
			}
			if s[1] > end {
				covered += s[1] - end
				end = s[1]
			}
		}
		area += covered * (x1 - x0)
	}
	return area
}
