package tracks

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrack() Track {
	return Track{
		ID: 1,
		Measurements: []Measurement{
			{Range: 10, Time: 0},
			{Range: 12, Time: 1},
			{Range: 14, Time: 2},
		},
		States: []FilteredState{{}, {}, {X: 11}},
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	doc := `[
	  {"track_id": 7,
	   "measurements": [[100, 45, 2, 0.5, 31], [[101, 46, 2, 1.5], 3]],
	   "Sf": [[1, 2, 3, 9, 9, 9], [4, 5, 6]]}
	]`

	got, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	want := []Track{{
		ID: 7,
		Measurements: []Measurement{
			{Range: 100, Azimuth: 45, Elevation: 2, Time: 0.5, Aux: []float64{31}},
			{Range: 101, Azimuth: 46, Elevation: 2, Time: 1.5},
		},
		States: []FilteredState{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "  \n", "null", "[]"} {
		got, err := Decode(strings.NewReader(doc))
		require.NoError(t, err, "doc %q", doc)
		assert.Empty(t, got, "doc %q", doc)
	}
}

func TestDecodeRejectsShortRecords(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"short measurement": `[{"track_id":1,"measurements":[[1,2,3]],"Sf":[]}]`,
		"short state":       `[{"track_id":1,"measurements":[],"Sf":[[1,2]]}]`,
		"not json":          `{{`,
		"string value":      `[{"track_id":1,"measurements":[["a","b","c","d"]]}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecodeScenarioTrack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Track{sampleTrack()}))
	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff([]Track{sampleTrack()}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeNilWritesEmptyArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	good := sampleTrack()
	dup := sampleTrack()
	dup.Measurements = nil
	unordered := Track{ID: 2, Measurements: []Measurement{{Time: 5}, {Time: 4}}}
	sameTime := Track{ID: 3, Measurements: []Measurement{{Range: 1, Time: 5}, {Range: 2, Time: 5}}}

	accepted, problems := Validate([]Track{good, dup, unordered, sameTime})

	require.Len(t, accepted, 2)
	assert.Equal(t, 1, accepted[0].ID)
	assert.Len(t, accepted[0].Measurements, 3, "first occurrence of a duplicate id wins")
	assert.Equal(t, 3, accepted[1].ID)

	require.Len(t, problems, 2)
	assert.Equal(t, 1, problems[0].TrackID)
	assert.Contains(t, problems[0].Error(), "duplicate")
	assert.Equal(t, 2, problems[1].TrackID)
	assert.Contains(t, problems[1].Error(), "precedes")
}

func TestStoreLoadReplacesWholesale(t *testing.T) {
	t.Parallel()

	s := NewStore()
	assert.True(t, s.Empty())
	assert.Nil(t, s.Get())

	s.Load([]Track{{ID: 1}, {ID: 2}, {ID: 3}})
	assert.Equal(t, []int{1, 2, 3}, s.IDs())
	assert.Equal(t, uint64(1), s.Generation())

	s.Load([]Track{{ID: 9}})
	assert.Equal(t, []int{9}, s.IDs())
	assert.Equal(t, uint64(2), s.Generation())

	_, ok := s.Find(1)
	assert.False(t, ok, "previous generation must not survive a reload")

	s.Clear()
	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, uint64(3), s.Generation())
}

func TestStoreOwnsItsCopy(t *testing.T) {
	t.Parallel()

	in := []Track{sampleTrack()}
	s := NewStore()
	s.Load(in)

	in[0].Measurements[0].Range = 999
	in[0].ID = 42

	got, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Measurements[0].Range)

	view := s.Get()
	view[0] = Track{ID: 100}
	assert.Equal(t, []int{1}, s.IDs(), "Get returns a fresh slice header")
}

func TestSummaries(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Load([]Track{sampleTrack(), {ID: 5}})

	got := s.Summaries()
	want := []Summary{
		{ID: 1, Measurements: 3, States: 3, StartTime: 0, EndTime: 2, MinRange: 10, MaxRange: 14},
		{ID: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestNonFiniteValuesEncodeAsNull(t *testing.T) {
	in := []Track{{
		ID: 4,
		Measurements: []Measurement{
			{Range: math.NaN(), Azimuth: 10, Time: 0},
			{Range: 20, Azimuth: math.Inf(1), Time: 1, Aux: []float64{math.Inf(-1)}},
		},
		States: []FilteredState{{X: math.NaN(), Y: 1, Z: 2}},
	}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	assert.Contains(t, buf.String(), "[null,10,0,0]")
	assert.Contains(t, buf.String(), "[null,1,2]")

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	got := out[0]
	assert.True(t, math.IsNaN(got.Measurements[0].Range))
	assert.True(t, math.IsNaN(got.Measurements[1].Azimuth), "infinities come back as NaN")
	assert.True(t, math.IsNaN(got.Measurements[1].Aux[0]))
	assert.True(t, math.IsNaN(got.States[0].X))
	assert.Equal(t, 20.0, got.Measurements[1].Range)
}

func TestSummarizeIgnoresNonFinite(t *testing.T) {
	s := Summarize(Track{ID: 5, Measurements: []Measurement{
		{Range: math.NaN(), Time: 0},
		{Range: 30, Time: math.Inf(1)},
		{Range: 40, Time: 2},
	}})
	assert.Equal(t, Summary{ID: 5, Measurements: 3, StartTime: 0, EndTime: 2, MinRange: 30, MaxRange: 40}, s)

	s = Summarize(Track{ID: 6, Measurements: []Measurement{{Range: math.NaN(), Time: math.NaN()}}})
	assert.Equal(t, Summary{ID: 6, Measurements: 1}, s)
}

func TestFilteredStateComponent(t *testing.T) {
	t.Parallel()

	s := FilteredState{X: 1, Y: 2, Z: 3}
	assert.Equal(t, 1.0, s.Component(0))
	assert.Equal(t, 2.0, s.Component(1))
	assert.Equal(t, 3.0, s.Component(2))
}
