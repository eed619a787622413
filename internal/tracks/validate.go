package tracks

import "fmt"

// Problem describes a track rejected at the engine boundary.
type Problem struct {
	TrackID int
	Reason  string
}

func (p Problem) Error() string {
	return fmt.Sprintf("track %d: %s", p.TrackID, p.Reason)
}

// Validate checks an engine result before it reaches the store. Rejected
// tracks are dropped individually so one bad record never discards the rest
// of the run:
//   - a repeated track id keeps the first occurrence;
//   - measurement times must be non-decreasing (equal times are allowed).
func Validate(in []Track) (accepted []Track, problems []Problem) {
	seen := make(map[int]bool, len(in))
	accepted = make([]Track, 0, len(in))

	for _, t := range in {
		if seen[t.ID] {
			problems = append(problems, Problem{TrackID: t.ID, Reason: "duplicate track id"})
			continue
		}
		if i := firstOutOfOrder(t.Measurements); i >= 0 {
			problems = append(problems, Problem{
				TrackID: t.ID,
				Reason: fmt.Sprintf("measurement %d at t=%g precedes t=%g",
					i, t.Measurements[i].Time, t.Measurements[i-1].Time),
			})
			continue
		}
		seen[t.ID] = true
		accepted = append(accepted, t)
	}
	return accepted, problems
}

func firstOutOfOrder(ms []Measurement) int {
	for i := 1; i < len(ms); i++ {
		if ms[i].Time < ms[i-1].Time {
			return i
		}
	}
	return -1
}
