// Package render provides the console's rendering backend: a retained Scene
// the dispatcher draws into, plus exporters that turn a snapshot of the scene
// into a PNG image (gonum/plot) or an interactive HTML page (go-echarts).
package render

import (
	"fmt"
	"sync"

	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/trackconsole/internal/dispatch"
	"github.com/banshee-data/trackconsole/internal/plotdata"
)

// Plot is the retained content of one plot area.
type Plot struct {
	Title  string            `json:"title"`
	XLabel string            `json:"x_label"`
	YLabel string            `json:"y_label"`
	Legend bool              `json:"legend"`
	Series []plotdata.Series `json:"-"`
}

// Snapshot is an immutable copy of a scene at one revision.
type Snapshot struct {
	Revision uint64 `json:"revision"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Plots    []Plot `json:"plots"`
}

// SeriesCount returns the number of series across every plot.
func (s Snapshot) SeriesCount() int {
	n := 0
	for _, p := range s.Plots {
		n += len(p.Series)
	}
	return n
}

// Scene is a retained dispatch.Surface. Every mutation bumps its revision so
// exporters can cache output per revision. Scene is safe for concurrent use.
type Scene struct {
	mu       sync.Mutex
	revision uint64
	rows     int
	cols     int
	plots    []*Plot
}

var _ dispatch.Surface = (*Scene)(nil)

// NewScene returns an empty single-plot scene.
func NewScene() *Scene {
	return &Scene{rows: 1, cols: 1, plots: []*Plot{{}}}
}

// Revision returns the current revision.
func (sc *Scene) Revision() uint64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.revision
}

// Snapshot copies the scene.
func (sc *Scene) Snapshot() Snapshot {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	snap := Snapshot{Revision: sc.revision, Rows: sc.rows, Cols: sc.cols, Plots: make([]Plot, len(sc.plots))}
	for i, p := range sc.plots {
		cp := *p
		cp.Series = append([]plotdata.Series(nil), p.Series...)
		snap.Plots[i] = cp
	}
	return snap
}

// Clear collapses the scene to one empty plot.
func (sc *Scene) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.rows, sc.cols = 1, 1
	sc.plots = []*Plot{{}}
	sc.revision++
}

// Grid replaces the scene with rows*cols empty plots.
func (sc *Scene) Grid(rows, cols int) []dispatch.Canvas {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.rows, sc.cols = rows, cols
	sc.plots = make([]*Plot, rows*cols)
	out := make([]dispatch.Canvas, rows*cols)
	for i := range sc.plots {
		sc.plots[i] = &Plot{}
		out[i] = &cell{scene: sc, plot: sc.plots[i]}
	}
	sc.revision++
	return out
}

// Plot adds a series to the first plot area.
func (sc *Scene) Plot(s plotdata.Series) error { return sc.first().Plot(s) }

// SetLabel sets an axis label on the first plot area.
func (sc *Scene) SetLabel(axis dispatch.Axis, text string) { sc.first().SetLabel(axis, text) }

// SetTitle sets the title of the first plot area.
func (sc *Scene) SetTitle(title string) { sc.first().SetTitle(title) }

// AddLegend enables the legend of the first plot area.
func (sc *Scene) AddLegend() { sc.first().AddLegend() }

func (sc *Scene) first() *cell {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return &cell{scene: sc, plot: sc.plots[0]}
}

// cell is one plot area of a scene.
type cell struct {
	scene *Scene
	plot  *Plot
}

func (c *cell) mutate(f func(p *Plot)) {
	c.scene.mu.Lock()
	defer c.scene.mu.Unlock()
	f(c.plot)
	c.scene.revision++
}

func (c *cell) Clear() {
	c.mutate(func(p *Plot) { *p = Plot{} })
}

// Plot retains s. Series with mismatched coordinate slices or non-finite
// values are rejected since no exporter can draw them.
func (c *cell) Plot(s plotdata.Series) error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("series %q has %d x values and %d y values", s.Label, len(s.X), len(s.Y))
	}
	if err := plotter.CheckFloats(s.X...); err != nil {
		return fmt.Errorf("series %q x: %w", s.Label, err)
	}
	if err := plotter.CheckFloats(s.Y...); err != nil {
		return fmt.Errorf("series %q y: %w", s.Label, err)
	}
	c.mutate(func(p *Plot) { p.Series = append(p.Series, s) })
	return nil
}

func (c *cell) SetLabel(axis dispatch.Axis, text string) {
	c.mutate(func(p *Plot) {
		if axis == dispatch.AxisLeft {
			p.YLabel = text
		} else {
			p.XLabel = text
		}
	})
}

func (c *cell) SetTitle(title string) {
	c.mutate(func(p *Plot) { p.Title = title })
}

func (c *cell) AddLegend() {
	c.mutate(func(p *Plot) { p.Legend = true })
}
