package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/trackconsole/internal/plotdata"
)

const pageTitle = "Radar Track Console"

// WriteHTML renders snap as an interactive go-echarts page: one chart for a
// single plot, or a flex page of charts for a grid.
func WriteHTML(w io.Writer, snap Snapshot) error {
	if len(snap.Plots) <= 1 {
		var p Plot
		if len(snap.Plots) == 1 {
			p = snap.Plots[0]
		}
		if err := buildChart(p, "1200px", "800px").Render(w); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		return nil
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	list := make([]components.Charter, 0, len(snap.Plots))
	for _, p := range snap.Plots {
		list = append(list, buildChart(p, "600px", "440px"))
	}
	page.AddCharts(list...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func buildChart(p Plot, width, height string) *charts.Scatter {
	xMin, xMax, yMin, yMax, ok := extents(p.Series)

	xAxis := opts.XAxis{Type: "value", Name: p.XLabel, NameLocation: "middle", NameGap: 25}
	yAxis := opts.YAxis{Type: "value", Name: p.YLabel, NameLocation: "middle", NameGap: 40}
	if ok {
		xAxis.Min, xAxis.Max = xMin, xMax
		yAxis.Min, yAxis.Max = yMin, yMax
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle, Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(p.Legend)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	var lines []charts.Overlaper
	for _, s := range p.Series {
		if s.Empty() {
			continue
		}
		hex := hexColor(seriesColor(s))
		if s.Style.Symbol != plotdata.SymbolNone {
			pts := make([]opts.ScatterData, s.Len())
			for i := range pts {
				pts[i] = opts.ScatterData{Value: []interface{}{s.X[i], s.Y[i]}, SymbolSize: s.Style.SymbolSize}
			}
			scatter.AddSeries(s.Label, pts, charts.WithItemStyleOpts(opts.ItemStyle{Color: hex}))
		}
		if s.Style.Line != plotdata.LineNone {
			pts := make([]opts.LineData, s.Len())
			for i := range pts {
				pts[i] = opts.LineData{Value: []interface{}{s.X[i], s.Y[i]}}
			}
			lineType := "solid"
			if s.Style.Line == plotdata.LineDashed {
				lineType = "dashed"
			}
			line := charts.NewLine()
			line.AddSeries(s.Label, pts,
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
				charts.WithLineStyleOpts(opts.LineStyle{Type: lineType, Color: hex}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: hex}),
			)
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		scatter.Overlap(lines...)
	}
	return scatter
}

// extents returns padded axis bounds covering every point of series.
func extents(series []plotdata.Series) (xMin, xMax, yMin, yMax float64, ok bool) {
	var xs, ys []float64
	for _, s := range series {
		xs = append(xs, s.X...)
		ys = append(ys, s.Y...)
	}
	if len(xs) == 0 || len(ys) == 0 {
		return 0, 0, 0, 0, false
	}
	xMin, xMax = pad(floats.Min(xs), floats.Max(xs))
	yMin, yMax = pad(floats.Min(ys), floats.Max(ys))
	return xMin, xMax, yMin, yMax, true
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*0.05, hi + span*0.05
}
