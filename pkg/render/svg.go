package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/cratestack/pkg/pack"
)

const (
	svgMargin       = 20.0
	svgDefaultScale = 4.0
)

const itemInteractionCSS = `
    .item { transition: fill-opacity 0.2s ease, stroke-width 0.2s ease; }
    .item:hover { fill-opacity: 1; stroke-width: 2.5; }
    .item-label { pointer-events: none; font-family: sans-serif; }
    .caption { font-family: sans-serif; fill: #555; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale  float64
	title  string
	labels bool
}

// WithScale sets the pixel size of one container unit.
func WithScale(scale float64) SVGOption {
	return func(r *svgRenderer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithTitle draws a headline above the panels.
func WithTitle(title string) SVGOption {
	return func(r *svgRenderer) { r.title = title }
}

// WithLabels draws item IDs on boxes large enough to hold them.
func WithLabels() SVGOption {
	return func(r *svgRenderer) { r.labels = true }
}

// RenderSVG draws a record as a two-panel SVG: a plan view (x/y,
// looking down) and an elevation view (x/z, looking from the front).
// Items appear in commit order, so later placements draw on top.
func RenderSVG(rec *pack.Record, opts ...SVGOption) []byte {
	r := svgRenderer{scale: svgDefaultScale}
	for _, opt := range opts {
		opt(&r)
	}

	var (
		planW = rec.Container.X * r.scale
		planH = rec.Container.Y * r.scale
		elevH = rec.Container.Z * r.scale
	)

	top := svgMargin
	if r.title != "" {
		top += 24
	}

	panelH := planH
	if elevH > panelH {
		panelH = elevH
	}

	width := svgMargin*3 + planW*2
	height := top + panelH + 36

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", itemInteractionCSS)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="14" font-weight="bold" font-family="sans-serif">%s</text>`+"\n",
			svgMargin, svgMargin+6, html.EscapeString(r.title))
	}

	// Plan panel: x right, y flipped so the container's y axis points up.
	r.drawPanel(&buf, rec, "plan", "plan (x/y)",
		svgMargin, top, planW, planH,
		func(p pack.PlacedItem) (x, y, w, h float64) {
			x = svgMargin + p.Position.X*r.scale
			y = top + (rec.Container.Y-(p.Position.Y+p.PlacedDims.Y))*r.scale
			return x, y, p.PlacedDims.X * r.scale, p.PlacedDims.Y * r.scale
		})

	// Elevation panel: x right, z flipped so the floor sits at the bottom.
	elevX := svgMargin*2 + planW
	r.drawPanel(&buf, rec, "elev", "elevation (x/z)",
		elevX, top, planW, elevH,
		func(p pack.PlacedItem) (x, y, w, h float64) {
			x = elevX + p.Position.X*r.scale
			y = top + (rec.Container.Z-(p.Position.Z+p.PlacedDims.Z))*r.scale
			return x, y, p.PlacedDims.X * r.scale, p.PlacedDims.Z * r.scale
		})

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) drawPanel(buf *bytes.Buffer, rec *pack.Record, panel, caption string,
	originX, originY, width, height float64,
	project func(p pack.PlacedItem) (x, y, w, h float64)) {

	fmt.Fprintf(buf, `  <g id="panel-%s">`+"\n", panel)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#888" stroke-width="1"/>`+"\n",
		originX, originY, width, height)

	for _, p := range rec.Placements {
		x, y, w, h := project(p)
		id := html.EscapeString(p.ID)
		fmt.Fprintf(buf, `    <rect class="item" id="item-%s-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.85" stroke="#333" stroke-width="1">`+"\n",
			panel, id, x, y, w, h, ColorFor(p.Index))
		fmt.Fprintf(buf, "      <title>%s %gx%gx%g at (%g, %g, %g)</title>\n",
			id, p.PlacedDims.X, p.PlacedDims.Y, p.PlacedDims.Z,
			p.Position.X, p.Position.Y, p.Position.Z)
		buf.WriteString("    </rect>\n")

		if r.labels && w >= 30 && h >= 12 {
			fmt.Fprintf(buf, `    <text class="item-label" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-size="10">%s</text>`+"\n",
				x+w/2, y+h/2, id)
		}
	}

	fmt.Fprintf(buf, `    <text class="caption" x="%.1f" y="%.1f" font-size="11">%s</text>`+"\n",
		originX, originY+height+16, caption)
	buf.WriteString("  </g>\n")
}
