// Package testutil provides shared track fixtures and assertions for tests
// across the console packages.
package testutil

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/trackconsole/internal/fsutil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// SyntheticTrack returns a track with n measurements one second apart,
// receding in range and sweeping in azimuth, with a filtered state per
// measurement.
func SyntheticTrack(id, n int) tracks.Track {
	t := tracks.Track{
		ID:           id,
		Measurements: make([]tracks.Measurement, n),
		States:       make([]tracks.FilteredState, n),
	}
	for i := 0; i < n; i++ {
		t.Measurements[i] = tracks.Measurement{
			Range:     1000 + 10*float64(i),
			Azimuth:   45 + float64(i),
			Elevation: 3,
			Time:      float64(i),
		}
		t.States[i] = tracks.FilteredState{
			X: 700 + 7*float64(i),
			Y: 700 + 7*float64(i),
			Z: 50,
		}
	}
	return t
}

// WriteEngineOutput encodes ts the way the tracking engine writes them and
// stores the result at path.
func WriteEngineOutput(t testing.TB, fsys fsutil.FileSystem, path string, ts ...tracks.Track) {
	t.Helper()
	var buf bytes.Buffer
	if err := tracks.Encode(&buf, ts); err != nil {
		t.Fatalf("encode tracks: %v", err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AssertStatusCode checks the recorded status and reports the body on
// mismatch.
func AssertStatusCode(t testing.TB, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
