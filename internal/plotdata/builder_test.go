package plotdata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackconsole/internal/geom"
	"github.com/banshee-data/trackconsole/internal/selection"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

func scenarioTracks() []tracks.Track {
	return []tracks.Track{{
		ID: 1,
		Measurements: []tracks.Measurement{
			{Range: 10, Azimuth: 0, Elevation: 0, Time: 0},
			{Range: 12, Azimuth: 0, Elevation: 0, Time: 1},
			{Range: 14, Azimuth: 0, Elevation: 0, Time: 2},
		},
		States: []tracks.FilteredState{{}, {}, {X: 11}},
	}}
}

func trackWithStates(id, measurements, states int) tracks.Track {
	t := tracks.Track{ID: id}
	for i := 0; i < measurements; i++ {
		t.Measurements = append(t.Measurements, tracks.Measurement{
			Range: float64(100 + i), Azimuth: float64(10 * i), Elevation: float64(i), Time: float64(i),
		})
	}
	for i := 0; i < states; i++ {
		t.States = append(t.States, tracks.FilteredState{X: float64(i), Y: float64(2 * i), Z: float64(3 * i)})
	}
	return t
}

func TestBuildRangeScenario(t *testing.T) {
	t.Parallel()

	got := Build(scenarioTracks(), selection.NewIDSet(1), RangeVsTime, MarkerMedium)

	want := []Series{
		{
			TrackID: 1,
			Kind:    KindMeasurements,
			X:       []float64{0, 1, 2},
			Y:       []float64{10, 12, 14},
			Style:   Style{Symbol: SymbolCircle, SymbolSize: 10, Line: LineNone},
			Label:   "Track 1 Range",
		},
		{
			TrackID: 1,
			Kind:    KindEstimates,
			X:       []float64{2},
			Y:       []float64{11},
			Style:   Style{Symbol: SymbolNone, Line: LineSolid, Estimate: true},
			Label:   "Track 1 Sf Range",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptySelectionYieldsNothing(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes() {
		assert.Empty(t, Build(scenarioTracks(), selection.NewIDSet(), mode, MarkerMedium), mode.String())
		assert.Empty(t, Build(scenarioTracks(), nil, mode, MarkerMedium), mode.String())
	}
}

func TestBuildEmptyStoreYieldsNothing(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes() {
		assert.Empty(t, Build(nil, selection.NewIDSet(1, 2), mode, MarkerSmall), mode.String())
	}
}

func TestOverlayLength(t *testing.T) {
	t.Parallel()

	for states := 0; states <= 6; states++ {
		tr := trackWithStates(1, 6, states)
		for _, mode := range []Mode{RangeVsTime, AzimuthVsTime, ElevationVsTime} {
			series := Build([]tracks.Track{tr}, selection.NewIDSet(1), mode, MarkerSmall)
			require.Len(t, series, 2)
			overlay := series[1]
			require.Equal(t, KindEstimates, overlay.Kind)

			if states <= FilterWarmupStates {
				assert.True(t, overlay.Empty(), "states=%d mode=%s", states, mode)
				continue
			}
			assert.Equal(t, states-2, overlay.Len(), "states=%d mode=%s", states, mode)
			assert.Equal(t, tr.Times()[2:states], overlay.X)
		}
	}
}

func TestOverlayAxisComponent(t *testing.T) {
	t.Parallel()

	tr := trackWithStates(4, 4, 4)
	visible := selection.NewIDSet(4)

	assert.Equal(t, []float64{2, 3}, Build([]tracks.Track{tr}, visible, RangeVsTime, MarkerSmall)[1].Y)
	assert.Equal(t, []float64{4, 6}, Build([]tracks.Track{tr}, visible, AzimuthVsTime, MarkerSmall)[1].Y)
	assert.Equal(t, []float64{6, 9}, Build([]tracks.Track{tr}, visible, ElevationVsTime, MarkerSmall)[1].Y)

	assert.Equal(t, []float64{0, 10, 20, 30}, Build([]tracks.Track{tr}, visible, AzimuthVsTime, MarkerSmall)[0].Y)
	assert.Equal(t, []float64{0, 1, 2, 3}, Build([]tracks.Track{tr}, visible, ElevationVsTime, MarkerSmall)[0].Y)
}

func TestOverlayTruncatesToShorterHistory(t *testing.T) {
	t.Parallel()

	more := trackWithStates(1, 3, 6)
	series := Build([]tracks.Track{more}, selection.NewIDSet(1), RangeVsTime, MarkerSmall)
	assert.Equal(t, []float64{2}, series[1].X)

	fewer := trackWithStates(1, 6, 4)
	series = Build([]tracks.Track{fewer}, selection.NewIDSet(1), RangeVsTime, MarkerSmall)
	assert.Equal(t, []float64{2, 3}, series[1].X)
}

func TestBuildExcludesHiddenTracks(t *testing.T) {
	t.Parallel()

	ts := []tracks.Track{trackWithStates(1, 3, 3), trackWithStates(2, 3, 3), trackWithStates(3, 3, 3)}
	visible := selection.NewIDSet(1, 3)

	for _, mode := range []Mode{RangeVsTime, AzimuthVsTime, ElevationVsTime, PPI, RHI} {
		for _, s := range Build(ts, visible, mode, MarkerBig) {
			assert.NotEqual(t, 2, s.TrackID, "mode %s", mode)
			assert.NotContains(t, s.Label, "Track 2 ", "mode %s", mode)
		}
	}
}

func TestBuildOrderFollowsStore(t *testing.T) {
	t.Parallel()

	ts := []tracks.Track{trackWithStates(30, 2, 0), trackWithStates(10, 2, 0), trackWithStates(20, 2, 0)}
	visible := selection.NewIDSet(10, 20, 30)

	var ids []int
	for _, s := range Build(ts, visible, PPI, MarkerSmall) {
		ids = append(ids, s.TrackID)
	}
	assert.Equal(t, []int{30, 10, 20}, ids)

	first := Build(ts, visible, RangeVsTime, MarkerSmall)
	second := Build(ts, visible, RangeVsTime, MarkerSmall)
	assert.Equal(t, first, second, "output must be stable for a fixed store and selection")
}

func TestBuildPPIAndRHI(t *testing.T) {
	t.Parallel()

	tr := tracks.Track{ID: 5, Measurements: []tracks.Measurement{
		{Range: 100, Azimuth: 90, Elevation: 0, Time: 0},
		{Range: 200, Azimuth: 30, Elevation: 10, Time: 1},
	}}
	visible := selection.NewIDSet(5)

	ppi := Build([]tracks.Track{tr}, visible, PPI, MarkerBig)
	require.Len(t, ppi, 1)
	assert.Equal(t, "Track 5 PPI", ppi[0].Label)
	assert.Equal(t, Style{Symbol: SymbolCircle, SymbolSize: 15, Line: LineNone}, ppi[0].Style)

	rhi := Build([]tracks.Track{tr}, visible, RHI, MarkerBig)
	require.Len(t, rhi, 1)
	assert.Equal(t, "Track 5 RHI", rhi[0].Label)
	assert.Equal(t, Style{Symbol: SymbolNone, Line: LineDashed}, rhi[0].Style)

	for i, m := range tr.Measurements {
		x, y, z := geom.Sph2Cart(m.Range, m.Azimuth, m.Elevation)
		assert.Equal(t, x, ppi[0].X[i])
		assert.Equal(t, y, ppi[0].Y[i])
		assert.Equal(t, x, rhi[0].X[i])
		assert.Equal(t, z, rhi[0].Y[i])
	}
}

func TestMarkerSizeOnlyChangesStyle(t *testing.T) {
	t.Parallel()

	ts := []tracks.Track{trackWithStates(1, 5, 5), trackWithStates(2, 4, 1)}
	visible := selection.NewIDSet(1, 2)

	for _, mode := range []Mode{RangeVsTime, AzimuthVsTime, ElevationVsTime, PPI, RHI} {
		small := Build(ts, visible, mode, MarkerSmall)
		big := Build(ts, visible, mode, MarkerBig)
		require.Len(t, big, len(small))
		for i := range small {
			assert.Equal(t, small[i].X, big[i].X)
			assert.Equal(t, small[i].Y, big[i].Y)
			assert.Equal(t, small[i].Label, big[i].Label)
			if small[i].Style.Symbol == SymbolCircle {
				assert.Equal(t, 5, small[i].Style.SymbolSize)
				assert.Equal(t, 15, big[i].Style.SymbolSize)
			}
		}
	}
}

func TestBuildAllModesIsNotADataMode(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Build(scenarioTracks(), selection.NewIDSet(1), AllModes, MarkerSmall))
}
