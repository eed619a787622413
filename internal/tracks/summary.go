package tracks

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Summary is the per-track digest shown next to each selection toggle.
type Summary struct {
	ID           int     `json:"track_id"`
	Measurements int     `json:"measurements"`
	States       int     `json:"states"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	MinRange     float64 `json:"min_range"`
	MaxRange     float64 `json:"max_range"`
}

// Summarize computes the digest for one track. Non-finite values are
// ignored; time and range fields stay zero when no finite value exists.
func Summarize(t Track) Summary {
	s := Summary{
		ID:           t.ID,
		Measurements: len(t.Measurements),
		States:       len(t.States),
	}
	var ranges, times []float64
	for _, m := range t.Measurements {
		if finite(m.Range) {
			ranges = append(ranges, m.Range)
		}
		if finite(m.Time) {
			times = append(times, m.Time)
		}
	}
	if len(times) > 0 {
		s.StartTime = floats.Min(times)
		s.EndTime = floats.Max(times)
	}
	if len(ranges) > 0 {
		s.MinRange = floats.Min(ranges)
		s.MaxRange = floats.Max(ranges)
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Summaries digests every track in the store, in store order.
func (s *Store) Summaries() []Summary {
	out := make([]Summary, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = Summarize(t)
	}
	return out
}
