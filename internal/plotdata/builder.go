// Package plotdata turns tracks into the ordered list of named series a
// rendering backend draws for one plot mode.
//
// Per-mode field selection:
//
//	Range vs Time      measurement range      vs time, overlay Sf.X
//	Azimuth vs Time    measurement azimuth    vs time, overlay Sf.Y
//	Elevation vs Time  measurement elevation  vs time, overlay Sf.Z
//	PPI                Sph2Cart(m).x vs .y,   no overlay
//	RHI                Sph2Cart(m).x vs .z,   no overlay
package plotdata

import (
	"fmt"

	"github.com/banshee-data/trackconsole/internal/geom"
	"github.com/banshee-data/trackconsole/internal/selection"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// FilterWarmupStates is the number of leading filtered states produced
// before the filter has enough history for a meaningful estimate. Overlays
// start after them, paired with the measurement times at the same offset.
const FilterWarmupStates = 2

// Symbol is the marker drawn at each point.
type Symbol int

const (
	SymbolNone Symbol = iota
	SymbolCircle
)

// LineType is the stroke connecting consecutive points.
type LineType int

const (
	LineNone LineType = iota
	LineSolid
	LineDashed
)

// Style is the styling intent for a series. Backends decide colours.
type Style struct {
	Symbol     Symbol
	SymbolSize int
	Line       LineType
	// Estimate marks a filtered-state overlay, drawn in the highlight colour.
	Estimate bool
}

// Kind identifies what a series carries.
type Kind int

const (
	KindMeasurements Kind = iota
	KindEstimates
	KindPlan
	KindProfile
)

// Series is one named, styled polyline or scatter handed to a backend.
type Series struct {
	TrackID int
	Kind    Kind
	X       []float64
	Y       []float64
	Style   Style
	Label   string
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.X) }

// Empty reports whether the series has no points. Empty series are valid
// output and are simply not drawn.
func (s Series) Empty() bool { return len(s.X) == 0 }

var axisNames = [...]string{
	RangeVsTime:     "Range",
	AzimuthVsTime:   "Azimuth",
	ElevationVsTime: "Elevation",
}

// Build returns the series for mode, one group per visible track in store
// order. Tracks absent from visible contribute nothing. AllModes is not a
// data mode and yields no series; the dispatcher expands it.
//
// Time-series modes produce two series per track: the raw measurements as
// markers and the filtered-state overlay as a line. The overlay pairs
// States[2:] with times[2:]; with two or fewer states it is empty.
// PPI produces one marker series per track and RHI one dashed line.
func Build(ts []tracks.Track, visible selection.IDSet, mode Mode, marker MarkerSize) []Series {
	var out []Series
	for _, t := range ts {
		if !visible.Has(t.ID) {
			continue
		}
		switch mode {
		case RangeVsTime, AzimuthVsTime, ElevationVsTime:
			axis := int(mode - RangeVsTime)
			out = append(out, measurementSeries(t, axis, marker), estimateSeries(t, axis))
		case PPI:
			out = append(out, planSeries(t, marker))
		case RHI:
			out = append(out, profileSeries(t))
		case AllModes:
			return nil
		}
	}
	return out
}

func measurementSeries(t tracks.Track, axis int, marker MarkerSize) Series {
	xs := make([]float64, len(t.Measurements))
	ys := make([]float64, len(t.Measurements))
	for i, m := range t.Measurements {
		xs[i] = m.Time
		ys[i] = measurementField(m, axis)
	}
	return Series{
		TrackID: t.ID,
		Kind:    KindMeasurements,
		X:       xs,
		Y:       ys,
		Style:   Style{Symbol: SymbolCircle, SymbolSize: int(marker), Line: LineNone},
		Label:   fmt.Sprintf("Track %d %s", t.ID, axisNames[axis]),
	}
}

func estimateSeries(t tracks.Track, axis int) Series {
	s := Series{
		TrackID: t.ID,
		Kind:    KindEstimates,
		Style:   Style{Symbol: SymbolNone, Line: LineSolid, Estimate: true},
		Label:   fmt.Sprintf("Track %d Sf %s", t.ID, axisNames[axis]),
	}

	// A filter that emitted more states than there are measurements (or
	// fewer) is paired up to the shorter of the two.
	n := min(len(t.States), len(t.Measurements))
	if n <= FilterWarmupStates {
		return s
	}
	s.X = make([]float64, 0, n-FilterWarmupStates)
	s.Y = make([]float64, 0, n-FilterWarmupStates)
	for i := FilterWarmupStates; i < n; i++ {
		s.X = append(s.X, t.Measurements[i].Time)
		s.Y = append(s.Y, t.States[i].Component(axis))
	}
	return s
}

func planSeries(t tracks.Track, marker MarkerSize) Series {
	xs := make([]float64, len(t.Measurements))
	ys := make([]float64, len(t.Measurements))
	for i, m := range t.Measurements {
		xs[i], ys[i], _ = geom.Sph2Cart(m.Range, m.Azimuth, m.Elevation)
	}
	return Series{
		TrackID: t.ID,
		Kind:    KindPlan,
		X:       xs,
		Y:       ys,
		Style:   Style{Symbol: SymbolCircle, SymbolSize: int(marker), Line: LineNone},
		Label:   fmt.Sprintf("Track %d PPI", t.ID),
	}
}

func profileSeries(t tracks.Track) Series {
	xs := make([]float64, len(t.Measurements))
	zs := make([]float64, len(t.Measurements))
	for i, m := range t.Measurements {
		xs[i], _, zs[i] = geom.Sph2Cart(m.Range, m.Azimuth, m.Elevation)
	}
	return Series{
		TrackID: t.ID,
		Kind:    KindProfile,
		X:       xs,
		Y:       zs,
		Style:   Style{Symbol: SymbolNone, Line: LineDashed},
		Label:   fmt.Sprintf("Track %d RHI", t.ID),
	}
}

func measurementField(m tracks.Measurement, axis int) float64 {
	switch axis {
	case 0:
		return m.Range
	case 1:
		return m.Azimuth
	default:
		return m.Elevation
	}
}
