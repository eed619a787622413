package tracks

// Store holds the tracks of the most recent processing run. It is replaced
// wholesale on every run and never partially updated.
//
// Store is not safe for concurrent use; the console session is its single
// owner.
type Store struct {
	tracks     []Track
	generation uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the active track set. The store keeps its own copy, so the
// caller may reuse the slice.
func (s *Store) Load(ts []Track) {
	next := make([]Track, len(ts))
	for i, t := range ts {
		next[i] = t.clone()
	}
	s.tracks = next
	s.generation++
}

// Clear moves the store to the explicit empty state used when the engine
// produced no tracks. Views built on an empty store render no data rather
// than the previous run's content.
func (s *Store) Clear() {
	s.tracks = nil
	s.generation++
}

// Get returns the current tracks in engine order. The returned slice is a
// fresh header over the store's records and must be treated as read-only.
func (s *Store) Get() []Track {
	if len(s.tracks) == 0 {
		return nil
	}
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Len returns the number of tracks held.
func (s *Store) Len() int { return len(s.tracks) }

// Empty reports whether the store holds no tracks.
func (s *Store) Empty() bool { return len(s.tracks) == 0 }

// Generation increments on every Load or Clear.
func (s *Store) Generation() uint64 { return s.generation }

// IDs returns the track identifiers in store order.
func (s *Store) IDs() []int {
	ids := make([]int, len(s.tracks))
	for i, t := range s.tracks {
		ids[i] = t.ID
	}
	return ids
}

// Find returns the track with the given id.
func (s *Store) Find(id int) (Track, bool) {
	for _, t := range s.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}
