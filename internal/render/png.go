package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/plotdata"
)

// Image size bounds, in pixels.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
	MinSize       = 200
	MaxSize       = 4000
)

const pngDPI = 96

// ClampSize bounds a requested image size, substituting defaults for zero.
func ClampSize(width, height int) (int, int) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return clamp(width), clamp(height)
}

func clamp(v int) int {
	if v < MinSize {
		return MinSize
	}
	if v > MaxSize {
		return MaxSize
	}
	return v
}

// WritePNG draws snap as a width x height pixel PNG image. Gridded scenes
// are laid out as aligned tiles.
func WritePNG(w io.Writer, snap Snapshot, width, height int) error {
	width, height = ClampSize(width, height)

	c := vgimg.NewWith(
		vgimg.UseWH(pxToLength(width), pxToLength(height)),
		vgimg.UseDPI(pngDPI),
	)
	dc := draw.New(c)

	plots := buildPlots(snap)

	if snap.Rows*snap.Cols <= 1 {
		plots[0][0].Draw(dc)
	} else {
		tiles := draw.Tiles{
			Rows:      snap.Rows,
			Cols:      snap.Cols,
			PadX:      vg.Millimeter * 4,
			PadY:      vg.Millimeter * 4,
			PadTop:    vg.Millimeter * 2,
			PadBottom: vg.Millimeter * 2,
			PadLeft:   vg.Millimeter * 2,
			PadRight:  vg.Millimeter * 2,
		}
		canvases := plot.Align(plots, tiles, dc)
		for r := range plots {
			for col := range plots[r] {
				if plots[r][col] != nil {
					plots[r][col].Draw(canvases[r][col])
				}
			}
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func pxToLength(px int) vg.Length {
	return vg.Length(px) * vg.Inch / pngDPI
}

// buildPlots converts a snapshot into a rows x cols grid of gonum plots.
func buildPlots(snap Snapshot) [][]*plot.Plot {
	rows, cols := snap.Rows, snap.Cols
	if rows < 1 || cols < 1 || len(snap.Plots) == 0 {
		rows, cols = 1, 1
	}
	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, cols)
		for c := range grid[r] {
			idx := r*cols + c
			var src Plot
			if idx < len(snap.Plots) {
				src = snap.Plots[idx]
			}
			grid[r][c] = buildPlot(src)
		}
	}
	return grid
}

func buildPlot(src Plot) *plot.Plot {
	p := plot.New()
	p.Title.Text = src.Title
	p.X.Label.Text = src.XLabel
	p.Y.Label.Text = src.YLabel
	p.Add(plotter.NewGrid())

	for _, s := range src.Series {
		if s.Empty() {
			continue
		}
		xys := make(plotter.XYs, s.Len())
		for i := range xys {
			xys[i].X = s.X[i]
			xys[i].Y = s.Y[i]
		}
		col := seriesColor(s)

		var thumbs []plot.Thumbnailer
		if s.Style.Line != plotdata.LineNone {
			line, err := plotter.NewLine(xys)
			if err != nil {
				monitoring.Logf("render: skipping line %q: %v", s.Label, err)
				continue
			}
			line.Color = col
			line.Width = vg.Points(1.5)
			if s.Style.Line == plotdata.LineDashed {
				line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
			}
			p.Add(line)
			thumbs = append(thumbs, line)
		}
		if s.Style.Symbol != plotdata.SymbolNone {
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				monitoring.Logf("render: skipping scatter %q: %v", s.Label, err)
				continue
			}
			sc.GlyphStyle.Color = col
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(float64(s.Style.SymbolSize) / 2)
			p.Add(sc)
			thumbs = append(thumbs, sc)
		}
		if src.Legend && len(thumbs) > 0 {
			p.Legend.Add(s.Label, thumbs...)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}
