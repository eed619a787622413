// Package dispatch maps a plot mode onto a rendering surface: it clears the
// surface, asks plotdata for the mode's series, plots them and then applies
// axis labels, title and legend.
package dispatch

import (
	"fmt"

	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/plotdata"
	"github.com/banshee-data/trackconsole/internal/selection"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// Axis names a labelled plot axis.
type Axis int

const (
	AxisLeft Axis = iota
	AxisBottom
)

func (a Axis) String() string {
	if a == AxisLeft {
		return "left"
	}
	return "bottom"
}

// Canvas is the capability a rendering backend exposes for one plot area.
type Canvas interface {
	Clear()
	Plot(s plotdata.Series) error
	SetLabel(axis Axis, text string)
	SetTitle(title string)
	AddLegend()
}

// Surface is a top-level plot area. Grid replaces the surface contents with
// rows*cols canvases in row-major order; Clear collapses it back to a
// single plot.
type Surface interface {
	Canvas
	Grid(rows, cols int) []Canvas
}

// Input is the data a redraw reads. The dispatcher never retains it.
type Input struct {
	Tracks  []tracks.Track
	Visible selection.IDSet
	Marker  plotdata.MarkerSize
}

// Result summarises one redraw of one surface.
type Result struct {
	Mode     plotdata.Mode
	Drawn    int
	Empty    int
	Rejected []error
}

func (r *Result) add(o Result) {
	r.Drawn += o.Drawn
	r.Empty += o.Empty
	r.Rejected = append(r.Rejected, o.Rejected...)
}

// panel is one region of the All Modes grid.
type panel struct {
	mode  plotdata.Mode
	title string
}

// allModesPanels is the 2x2 layout, row-major.
var allModesPanels = [4]panel{
	{plotdata.RangeVsTime, "Range vs Time"},
	{plotdata.AzimuthVsTime, "Azimuth vs Time"},
	{plotdata.PPI, "PPI Plot"},
	{plotdata.RHI, "RHI Plot"},
}

// Dispatcher holds the current mode and the surfaces it draws on. It is not
// safe for concurrent use; its owner serialises calls.
type Dispatcher struct {
	mode     plotdata.Mode
	surfaces []Surface
}

// New returns a dispatcher in Range vs Time mode drawing on surfaces.
func New(surfaces ...Surface) *Dispatcher {
	return &Dispatcher{mode: plotdata.RangeVsTime, surfaces: surfaces}
}

// Attach adds another surface; it is drawn on from the next Render.
func (d *Dispatcher) Attach(s Surface) {
	d.surfaces = append(d.surfaces, s)
}

// Mode returns the current mode.
func (d *Dispatcher) Mode() plotdata.Mode { return d.mode }

// SetMode changes the current mode. The caller triggers the redraw.
func (d *Dispatcher) SetMode(m plotdata.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid plot mode %d", int(m))
	}
	d.mode = m
	return nil
}

// Clear empties every surface without changing the mode.
func (d *Dispatcher) Clear() {
	for _, s := range d.surfaces {
		s.Clear()
	}
}

// Render redraws every surface for the current mode. A series the backend
// rejects is skipped and reported in the result; the rest of the redraw
// still happens.
func (d *Dispatcher) Render(in Input) Result {
	total := Result{Mode: d.mode}
	for _, s := range d.surfaces {
		total.add(renderSurface(s, d.mode, in))
	}
	return total
}

func renderSurface(s Surface, mode plotdata.Mode, in Input) Result {
	s.Clear()

	switch mode {
	case plotdata.RangeVsTime, plotdata.AzimuthVsTime, plotdata.ElevationVsTime, plotdata.PPI, plotdata.RHI:
		return renderCanvas(s, mode, title(mode), in)
	case plotdata.AllModes:
		res := Result{Mode: mode}
		cells := s.Grid(2, 2)
		for i, p := range allModesPanels {
			if i >= len(cells) {
				res.Rejected = append(res.Rejected, fmt.Errorf("surface grid has %d cells, need %d", len(cells), len(allModesPanels)))
				break
			}
			res.add(renderCanvas(cells[i], p.mode, p.title, in))
		}
		return res
	}
	return Result{Mode: mode, Rejected: []error{fmt.Errorf("invalid plot mode %d", int(mode))}}
}

func renderCanvas(c Canvas, mode plotdata.Mode, heading string, in Input) Result {
	res := Result{Mode: mode}
	for _, s := range plotdata.Build(in.Tracks, in.Visible, mode, in.Marker) {
		if s.Empty() {
			res.Empty++
			continue
		}
		if err := c.Plot(s); err != nil {
			monitoring.Logf("dispatch: %s: dropping series %q: %v", mode, s.Label, err)
			res.Rejected = append(res.Rejected, fmt.Errorf("series %q: %w", s.Label, err))
			continue
		}
		res.Drawn++
	}

	left, bottom := labels(mode)
	c.SetLabel(AxisLeft, left)
	c.SetLabel(AxisBottom, bottom)
	c.SetTitle(heading)
	c.AddLegend()
	return res
}

func title(mode plotdata.Mode) string {
	switch mode {
	case plotdata.PPI:
		return "PPI Plot (360°)"
	case plotdata.RHI:
		return "RHI Plot"
	}
	return "Tracks " + mode.String()
}

func labels(mode plotdata.Mode) (left, bottom string) {
	switch mode {
	case plotdata.RangeVsTime:
		return "Range (m)", "Time (s)"
	case plotdata.AzimuthVsTime:
		return "Azimuth (deg)", "Time (s)"
	case plotdata.ElevationVsTime:
		return "Elevation (deg)", "Time (s)"
	case plotdata.PPI:
		return "Y (m)", "X (m)"
	case plotdata.RHI:
		return "Z (m)", "X (m)"
	}
	return "", ""
}
