package tablelog

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackconsole/internal/fsutil"
)

func TestLoad(t *testing.T) {
	in := "track_id, time, range\n1,0.0,1000\n1,1.0,1010\n2,0.5\n"

	got, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	want := Table{
		Headers: []string{"track_id", "time", "range"},
		Rows: [][]string{
			{"1", "0.0", "1000"},
			{"1", "1.0", "1010"},
			{"2", "0.5"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	got, err := Load(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Headers)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestLoadMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"bad quote":    "a,b\n\"unterminated,1\n",
		"quote header": "\"a,b\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoadFile(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("/out/track_summary.csv", []byte("id,length\n3,12\n"), 0o644))

	got, err := LoadKind(fsys, "/out", TrackSummary)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3", "12"}}, got.Rows)

	_, err = LoadKind(fsys, "/out", DetailedLog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrMalformed))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "detailed_log.csv", DetailedLog.FileName())
	assert.Equal(t, "track_summary", TrackSummary.String())

	for in, want := range map[string]Kind{
		"detailed_log":      DetailedLog,
		"Detailed-Log":      DetailedLog,
		"track_summary.csv": TrackSummary,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("raw")
	assert.Error(t, err)
	assert.Empty(t, Kind(9).FileName())
}
