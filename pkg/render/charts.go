package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// heightProfileColors is the visual-map gradient for the height
// profile, low placements dark and high placements bright.
var heightProfileColors = []string{
	"#440154", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#fde725",
}

// ChartsOption configures the stats page.
type ChartsOption func(*chartsRenderer)

type chartsRenderer struct {
	title string
}

// WithChartsTitle overrides the page title.
func WithChartsTitle(title string) ChartsOption {
	return func(r *chartsRenderer) { r.title = title }
}

// RenderCharts builds a self-contained HTML statistics page for a
// record: a height profile (top face z of each placement over commit
// order) and a per-item volume bar chart.
func RenderCharts(rec *pack.Record, opts ...ChartsOption) ([]byte, error) {
	r := chartsRenderer{title: "Packing run"}
	for _, opt := range opts {
		opt(&r)
	}

	page := components.NewPage()
	page.PageTitle = r.title
	page.AddCharts(r.heightProfile(rec), r.volumeBars(rec))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render charts page")
	}
	return buf.Bytes(), nil
}

// heightProfile plots the top face height of every placement by commit
// order, color-mapped by height. A rising staircase means stacking; a
// flat profile means the floor still had room.
func (r *chartsRenderer) heightProfile(rec *pack.Record) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(rec.Placements))
	for _, p := range rec.Placements {
		top := p.Box().Top()
		data = append(data, opts.ScatterData{
			Name:  p.ID,
			Value: []interface{}{p.Index, top, top},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Placement height profile",
			Subtitle: fmt.Sprintf("placed=%d unplaced=%d utilization=%.1f%%",
				rec.Stats.PlacedCount, rec.Stats.UnplacedCount, rec.Stats.Utilization*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "commit order", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "top z", Max: rec.Container.Z}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:      opts.Bool(true),
			Min:       0,
			Max:       float32(rec.Container.Z),
			Dimension: "2",
			InRange:   &opts.VisualMapInRange{Color: heightProfileColors},
		}),
	)
	scatter.AddSeries("top z", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter
}

// volumeBars shows each placement's volume in commit order, with
// unplaced items appended at zero so gaps in the catalog are visible.
func (r *chartsRenderer) volumeBars(rec *pack.Record) *charts.Bar {
	x := make([]string, 0, len(rec.Placements)+len(rec.Unplaced))
	y := make([]opts.BarData, 0, cap(x))
	for _, p := range rec.Placements {
		x = append(x, p.ID)
		y = append(y, opts.BarData{Value: p.Box().Volume()})
	}
	for _, u := range rec.Unplaced {
		x = append(x, u.ID)
		y = append(y, opts.BarData{Value: 0, Name: u.Reason})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Item volumes"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("volume", y)
	return bar
}
