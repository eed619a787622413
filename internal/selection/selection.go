// Package selection tracks which tracks are visible in the plot views.
//
// The visible set is the single source of truth for every per-track toggle
// and for the aggregate "select all" control, which is derived from it and
// never stored separately.
package selection

import (
	"sort"

	"github.com/banshee-data/trackconsole/internal/tracks"
)

// IDSet is a set of track identifiers.
type IDSet map[int]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Toggle is the derived view of one per-track checkbox.
type Toggle struct {
	TrackID int  `json:"track_id"`
	Visible bool `json:"visible"`
}

// State is the visible-track set for the current Track Store generation.
// Not safe for concurrent use; the console session owns it.
type State struct {
	known   []int
	visible IDSet
}

// New returns a state with no known tracks.
func New() *State {
	return &State{visible: IDSet{}}
}

// InitializeFromTracks resets the known ids to those of ts and marks every
// one visible. Ids from a previous generation are dropped.
func (s *State) InitializeFromTracks(ts []tracks.Track) {
	s.known = make([]int, 0, len(ts))
	s.visible = make(IDSet, len(ts))
	for _, t := range ts {
		if s.visible.Has(t.ID) {
			continue
		}
		s.known = append(s.known, t.ID)
		s.visible[t.ID] = struct{}{}
	}
}

// SetVisible updates one track. Unknown ids are ignored; the return value
// reports whether the id was known.
func (s *State) SetVisible(id int, visible bool) bool {
	if !s.isKnown(id) {
		return false
	}
	if visible {
		s.visible[id] = struct{}{}
	} else {
		delete(s.visible, id)
	}
	return true
}

// SetAllVisible applies visible to every known track.
func (s *State) SetAllVisible(visible bool) {
	s.visible = make(IDSet, len(s.known))
	if !visible {
		return
	}
	for _, id := range s.known {
		s.visible[id] = struct{}{}
	}
}

// IsAllVisible reports whether every known track is selected. With no known
// tracks it is vacuously true.
func (s *State) IsAllVisible() bool {
	for _, id := range s.known {
		if !s.visible.Has(id) {
			return false
		}
	}
	return true
}

// VisibleIDs returns a snapshot of the visible set.
func (s *State) VisibleIDs() IDSet {
	out := make(IDSet, len(s.visible))
	for id := range s.visible {
		out[id] = struct{}{}
	}
	return out
}

// Toggles returns one entry per known track, in store order.
func (s *State) Toggles() []Toggle {
	out := make([]Toggle, len(s.known))
	for i, id := range s.known {
		out[i] = Toggle{TrackID: id, Visible: s.visible.Has(id)}
	}
	return out
}

func (s *State) isKnown(id int) bool {
	for _, k := range s.known {
		if k == id {
			return true
		}
	}
	return false
}
