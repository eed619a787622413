package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/trackconsole/internal/tracks"
)

func trackSet(ids ...int) []tracks.Track {
	out := make([]tracks.Track, len(ids))
	for i, id := range ids {
		out[i] = tracks.Track{ID: id}
	}
	return out
}

func toggleIDs(s *State) []int {
	var ids []int
	for _, tg := range s.Toggles() {
		ids = append(ids, tg.TrackID)
	}
	return ids
}

func TestInitializeSelectsEverything(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(3, 1, 2))

	assert.True(t, s.IsAllVisible())
	assert.Equal(t, []int{1, 2, 3}, s.VisibleIDs().Sorted())
	assert.Equal(t, []int{3, 1, 2}, toggleIDs(s), "toggles keep store order")
}

func TestSetVisible(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(1, 2))

	assert.True(t, s.SetVisible(2, false))
	assert.False(t, s.IsAllVisible())
	assert.Equal(t, []int{1}, s.VisibleIDs().Sorted())

	assert.True(t, s.SetVisible(2, true))
	assert.True(t, s.IsAllVisible())
}

func TestSetVisibleUnknownIsNoop(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(1))

	assert.False(t, s.SetVisible(99, true))
	assert.False(t, s.VisibleIDs().Has(99))
	assert.Equal(t, []int{1}, s.VisibleIDs().Sorted())
}

func TestSetAllVisible(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(1, 2, 3))

	s.SetAllVisible(false)
	assert.Empty(t, s.VisibleIDs())
	assert.False(t, s.IsAllVisible())

	s.SetAllVisible(true)
	assert.True(t, s.IsAllVisible())

	for _, id := range toggleIDs(s) {
		s.SetVisible(id, false)
		assert.False(t, s.IsAllVisible(), "hiding track %d", id)
		s.SetVisible(id, true)
	}
}

func TestReinitializePrunesStaleIDs(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(1, 2, 3))
	s.SetVisible(2, false)

	s.InitializeFromTracks(trackSet(4, 5))

	assert.Equal(t, []int{4, 5}, s.VisibleIDs().Sorted())
	assert.Equal(t, []int{4, 5}, toggleIDs(s))
	assert.False(t, s.SetVisible(1, true), "old id must be unknown after replacement")
	assert.True(t, s.IsAllVisible())
}

func TestEmptyGeneration(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(nil)

	assert.True(t, s.IsAllVisible())
	assert.Empty(t, s.VisibleIDs())
	assert.Empty(t, s.Toggles())
}

func TestToggles(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(10, 20))
	s.SetVisible(10, false)

	assert.Equal(t, []Toggle{{TrackID: 10, Visible: false}, {TrackID: 20, Visible: true}}, s.Toggles())
}

func TestVisibleIDsIsSnapshot(t *testing.T) {
	t.Parallel()

	s := New()
	s.InitializeFromTracks(trackSet(1, 2))

	snap := s.VisibleIDs()
	s.SetVisible(1, false)

	assert.True(t, snap.Has(1))
	assert.False(t, s.VisibleIDs().Has(1))
}

func TestIDSet(t *testing.T) {
	t.Parallel()

	var nilSet IDSet
	assert.False(t, nilSet.Has(1))

	s := NewIDSet(3, 1, 3)
	assert.Len(t, s, 2)
	assert.Equal(t, []int{1, 3}, s.Sorted())
}
