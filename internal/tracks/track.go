// Package tracks holds the processed radar tracks returned by the external
// tracking engine: the record types, the engine-output codec, boundary
// validation and the Track Store that owns one processing run's results.
//
// Tracks are immutable once loaded. Nothing in the console mutates a track
// after the store accepts it; a new processing run replaces the whole set.
package tracks

import (
	"encoding/json"
	"fmt"
	"math"
)

// Measurement is one raw sensor detection in spherical form. Only the first
// three fields are interpreted as position and the fourth as time; anything
// else the engine reported (amplitude, SNR, ...) is kept in Aux.
type Measurement struct {
	Range     float64
	Azimuth   float64
	Elevation float64
	Time      float64
	Aux       []float64
}

// FilteredState is the filter's Cartesian position estimate at one step.
type FilteredState struct {
	X float64
	Y float64
	Z float64
}

// Component returns the estimate along axis 0 (X), 1 (Y) or 2 (Z).
func (s FilteredState) Component(axis int) float64 {
	switch axis {
	case 0:
		return s.X
	case 1:
		return s.Y
	default:
		return s.Z
	}
}

// Track is a persisted association of measurements believed to come from one
// target, plus the filter's state estimates for it ("Sf").
type Track struct {
	ID           int             `json:"track_id"`
	Measurements []Measurement   `json:"measurements"`
	States       []FilteredState `json:"Sf"`
}

// Times returns the measurement timestamps in order.
func (t Track) Times() []float64 {
	times := make([]float64, len(t.Measurements))
	for i, m := range t.Measurements {
		times[i] = m.Time
	}
	return times
}

func (t Track) clone() Track {
	out := Track{ID: t.ID}
	if t.Measurements != nil {
		out.Measurements = make([]Measurement, len(t.Measurements))
		for i, m := range t.Measurements {
			out.Measurements[i] = m
			if m.Aux != nil {
				out.Measurements[i].Aux = append([]float64(nil), m.Aux...)
			}
		}
	}
	if t.States != nil {
		out.States = append([]FilteredState(nil), t.States...)
	}
	return out
}

// number is a float64 whose JSON form is null when it is NaN or infinite.
// null decodes back to NaN.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (n *number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = number(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = number(v)
	return nil
}

func numbers(vs ...float64) []number {
	out := make([]number, len(vs))
	for i, v := range vs {
		out[i] = number(v)
	}
	return out
}

func floats64(ns []number) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = float64(n)
	}
	return out
}

// MarshalJSON encodes a measurement as a flat array
// [range, azimuth, elevation, time, aux...].
func (m Measurement) MarshalJSON() ([]byte, error) {
	vals := numbers(m.Range, m.Azimuth, m.Elevation, m.Time)
	vals = append(vals, numbers(m.Aux...)...)
	return json.Marshal(vals)
}

// UnmarshalJSON accepts either the flat array form or the nested form the
// engine emits when it attaches bookkeeping to each detection:
// [[range, azimuth, elevation, time, ...], extra...].
func (m *Measurement) UnmarshalJSON(b []byte) error {
	var raw []number
	if err := json.Unmarshal(b, &raw); err != nil {
		var nested []json.RawMessage
		if nerr := json.Unmarshal(b, &nested); nerr != nil || len(nested) == 0 {
			return fmt.Errorf("measurement must be a numeric array: %w", err)
		}
		if err := json.Unmarshal(nested[0], &raw); err != nil {
			return fmt.Errorf("measurement position tuple: %w", err)
		}
	}
	vals := floats64(raw)
	if len(vals) < 4 {
		return fmt.Errorf("measurement needs range, azimuth, elevation and time, got %d values", len(vals))
	}
	*m = Measurement{
		Range:     vals[0],
		Azimuth:   vals[1],
		Elevation: vals[2],
		Time:      vals[3],
	}
	if len(vals) > 4 {
		m.Aux = append([]float64(nil), vals[4:]...)
	}
	return nil
}

// MarshalJSON encodes a state as [x, y, z].
func (s FilteredState) MarshalJSON() ([]byte, error) {
	return json.Marshal(numbers(s.X, s.Y, s.Z))
}

// UnmarshalJSON reads the first three entries of a state vector. Engines that
// carry velocity or acceleration terms append them after the position and
// those terms are ignored.
func (s *FilteredState) UnmarshalJSON(b []byte) error {
	var raw []number
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("filtered state must be a numeric array: %w", err)
	}
	vals := floats64(raw)
	if len(vals) < 3 {
		return fmt.Errorf("filtered state needs x, y and z, got %d values", len(vals))
	}
	*s = FilteredState{X: vals[0], Y: vals[1], Z: vals[2]}
	return nil
}
