package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackconsole/internal/fsutil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

func TestSyntheticTrackIsValid(t *testing.T) {
	tr := SyntheticTrack(4, 5)
	assert.Equal(t, 4, tr.ID)
	assert.Len(t, tr.Measurements, 5)
	assert.Len(t, tr.States, 5)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, tr.Times())

	accepted, problems := tracks.Validate([]tracks.Track{tr})
	assert.Empty(t, problems)
	assert.Len(t, accepted, 1)
}

func TestWriteEngineOutputRoundTrip(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	WriteEngineOutput(t, fsys, "/in/run.json", SyntheticTrack(1, 3), SyntheticTrack(2, 2))

	f, err := fsys.Open("/in/run.json")
	require.NoError(t, err)
	defer f.Close()
	got, err := tracks.Decode(f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].ID)
	assert.Len(t, got[1].Measurements, 2)
}

func TestAssertStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusTeapot)

	AssertStatusCode(t, rec, http.StatusTeapot)

	fake := &recordingTB{TB: t}
	AssertStatusCode(fake, rec, http.StatusOK)
	assert.True(t, fake.failed)
}

type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(string, ...any) { r.failed = true }
