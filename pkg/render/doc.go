// Package render turns packing records into visual artifacts.
//
// # Overview
//
// This package contains the renderers that transform placement records
// into shareable outputs. It provides:
//
//   - Static SVG drawings with plan and elevation panels ([RenderSVG])
//   - A self-contained HTML replay page ([RenderHTML])
//   - Statistics charts built on go-echarts ([RenderCharts])
//   - JSON export of the raw record ([RenderJSON])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats
// using the external rsvg-convert tool (from librsvg). They work on
// the SVG output of this package as well as on support graphs rendered
// through Graphviz.
//
//	svg := render.RenderSVG(rec)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Coordinates
//
// Records use a z-up coordinate system with the origin at the
// container's front-left-bottom corner. SVG uses y-down, so both the
// plan panel (x/y) and the elevation panel (x/z) flip the vertical
// axis before drawing. Items are drawn in commit order; replaying a
// record's placements one by one reproduces the run.
package render
