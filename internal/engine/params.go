package engine

import (
	"errors"
	"fmt"
	"strings"
)

// TrackInit is the number of states used to initiate a track.
type TrackInit int

const (
	ThreeState TrackInit = 3
	FiveState  TrackInit = 5
	SevenState TrackInit = 7
)

func (t TrackInit) String() string { return fmt.Sprintf("%d-state", int(t)) }

// Valid reports whether t is a supported initiation mode.
func (t TrackInit) Valid() bool { return t == ThreeState || t == FiveState || t == SevenState }

// ParseTrackInit accepts "3-state", "3" and similar.
func ParseTrackInit(s string) (TrackInit, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-state") {
	case "3":
		return ThreeState, nil
	case "5":
		return FiveState, nil
	case "7":
		return SevenState, nil
	}
	return 0, fmt.Errorf("unknown track initiation %q (want 3-state, 5-state or 7-state)", s)
}

func (t TrackInit) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid track initiation %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *TrackInit) UnmarshalText(b []byte) error {
	v, err := ParseTrackInit(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Filter is the motion model of the tracking filter.
type Filter int

const (
	// ConstantVelocity is the CV model.
	ConstantVelocity Filter = iota
	// ConstantAcceleration is the CA model.
	ConstantAcceleration
	// CoordinatedTurn is the CT model.
	CoordinatedTurn
)

var filterNames = [...]string{ConstantVelocity: "CV", ConstantAcceleration: "CA", CoordinatedTurn: "CT"}

func (f Filter) String() string {
	if f < ConstantVelocity || f > CoordinatedTurn {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseFilter accepts CV, CA or CT, case-insensitively, with an optional
// " filter" suffix.
func ParseFilter(s string) (Filter, error) {
	key := strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "FILTER"))
	for f, name := range filterNames {
		if key == name {
			return Filter(f), nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q (want CV, CA or CT)", s)
}

func (f Filter) MarshalText() ([]byte, error) {
	if f < ConstantVelocity || f > CoordinatedTurn {
		return nil, fmt.Errorf("invalid filter %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Filter) UnmarshalText(b []byte) error {
	v, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Association is the measurement-to-track association technique.
type Association int

const (
	JPDA Association = iota
	Munkres
)

func (a Association) String() string {
	switch a {
	case JPDA:
		return "JPDA"
	case Munkres:
		return "Munkres"
	}
	return fmt.Sprintf("Association(%d)", int(a))
}

// ParseAssociation accepts "JPDA" or "Munkres", case-insensitively.
func ParseAssociation(s string) (Association, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpda":
		return JPDA, nil
	case "munkres", "hungarian":
		return Munkres, nil
	}
	return 0, fmt.Errorf("unknown association %q (want JPDA or Munkres)", s)
}

func (a Association) MarshalText() ([]byte, error) {
	if a != JPDA && a != Munkres {
		return nil, fmt.Errorf("invalid association %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Association) UnmarshalText(b []byte) error {
	v, err := ParseAssociation(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Params are the operator's processing choices.
type Params struct {
	TrackInit   TrackInit   `json:"track_init"`
	Filter      Filter      `json:"filter"`
	Association Association `json:"association"`
}

// DefaultParams matches the console's initial control state.
func DefaultParams() Params {
	return Params{TrackInit: ThreeState, Filter: ConstantVelocity, Association: JPDA}
}

// Validate checks every field is a known value.
func (p Params) Validate() error {
	var errs []error
	if !p.TrackInit.Valid() {
		errs = append(errs, fmt.Errorf("invalid track initiation %d", int(p.TrackInit)))
	}
	if p.Filter < ConstantVelocity || p.Filter > CoordinatedTurn {
		errs = append(errs, fmt.Errorf("invalid filter %d", int(p.Filter)))
	}
	if p.Association != JPDA && p.Association != Munkres {
		errs = append(errs, fmt.Errorf("invalid association %d", int(p.Association)))
	}
	return errors.Join(errs...)
}

// Bounds is an inclusive [Min, Max] interval.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SystemConfig carries the target and gate limits forwarded to the engine.
type SystemConfig struct {
	TargetSpeed    Bounds  `json:"target_speed"`    // m/s
	TargetAltitude Bounds  `json:"target_altitude"` // m
	RangeGate      Bounds  `json:"range_gate"`      // m
	AzimuthGate    Bounds  `json:"azimuth_gate"`    // degrees
	ElevationGate  Bounds  `json:"elevation_gate"`  // degrees
	PlantNoise     float64 `json:"plant_noise"`
}

// DefaultSystemConfig returns the stock limits.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		TargetSpeed:    Bounds{0, 100},
		TargetAltitude: Bounds{0, 10000},
		RangeGate:      Bounds{0, 1000},
		AzimuthGate:    Bounds{0, 360},
		ElevationGate:  Bounds{0, 90},
		PlantNoise:     20,
	}
}

// Validate checks each interval is ordered and the angular gates are in range.
func (c SystemConfig) Validate() error {
	var errs []error
	check := func(name string, b Bounds, lo, hi float64) {
		if b.Min > b.Max {
			errs = append(errs, fmt.Errorf("%s: min %g exceeds max %g", name, b.Min, b.Max))
		}
		if b.Min < lo || b.Max > hi {
			errs = append(errs, fmt.Errorf("%s: [%g, %g] outside [%g, %g]", name, b.Min, b.Max, lo, hi))
		}
	}
	check("target_speed", c.TargetSpeed, 0, 1e6)
	check("target_altitude", c.TargetAltitude, -1e5, 1e6)
	check("range_gate", c.RangeGate, 0, 1e7)
	check("azimuth_gate", c.AzimuthGate, 0, 360)
	check("elevation_gate", c.ElevationGate, -90, 90)
	if c.PlantNoise < 0 {
		errs = append(errs, fmt.Errorf("plant_noise must be non-negative, got %g", c.PlantNoise))
	}
	return errors.Join(errs...)
}
