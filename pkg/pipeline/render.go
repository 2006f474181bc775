package pipeline

import (
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pack"
	"github.com/matzehuels/cratestack/pkg/render"
	"github.com/matzehuels/cratestack/pkg/support"
)

// renderFormat produces one artifact from a verified record.
func renderFormat(rec *pack.Record, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return render.RenderJSON(rec)
	case FormatSVG:
		return renderSVG(rec, opts), nil
	case FormatPNG:
		return render.ToPNG(renderSVG(rec, opts), 2.0)
	case FormatPDF:
		return render.ToPDF(renderSVG(rec, opts))
	case FormatHTML:
		return render.RenderHTML(rec)
	case FormatCharts:
		if opts.Title != "" {
			return render.RenderCharts(rec, render.WithChartsTitle(opts.Title))
		}
		return render.RenderCharts(rec)
	case FormatDOT:
		g := support.Build(rec)
		return []byte(support.ToDOT(g, support.DOTOptions{Detailed: opts.Labels})), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q", format)
	}
}

// renderSVG applies the SVG options shared by the svg, png, and pdf
// formats.
func renderSVG(rec *pack.Record, opts Options) []byte {
	svgOpts := []render.SVGOption{}
	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	return render.RenderSVG(rec, svgOpts...)
}
