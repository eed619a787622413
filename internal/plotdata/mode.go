package plotdata

import (
	"fmt"
	"strings"
)

// Mode selects which view the operator is looking at. The set is closed;
// every switch over Mode in this module is exhaustive.
type Mode int

const (
	RangeVsTime Mode = iota
	AzimuthVsTime
	ElevationVsTime
	PPI
	RHI
	// AllModes is a composite view, not a data mode: the dispatcher fans it
	// out to Range, Azimuth, PPI and RHI panels.
	AllModes
)

var modeNames = [...]string{
	RangeVsTime:     "Range vs Time",
	AzimuthVsTime:   "Azimuth vs Time",
	ElevationVsTime: "Elevation vs Time",
	PPI:             "PPI",
	RHI:             "RHI",
	AllModes:        "All Modes",
}

var modeSlugs = [...]string{
	RangeVsTime:     "range",
	AzimuthVsTime:   "azimuth",
	ElevationVsTime: "elevation",
	PPI:             "ppi",
	RHI:             "rhi",
	AllModes:        "all",
}

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{RangeVsTime, AzimuthVsTime, ElevationVsTime, PPI, RHI, AllModes}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= RangeVsTime && m <= AllModes
}

// String returns the menu label, e.g. "Range vs Time".
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Slug returns the short URL/file-name form, e.g. "range".
func (m Mode) Slug() string {
	if !m.Valid() {
		return fmt.Sprintf("mode%d", int(m))
	}
	return modeSlugs[m]
}

// IsTimeSeries reports whether m plots a measurement field against time.
func (m Mode) IsTimeSeries() bool {
	return m == RangeVsTime || m == AzimuthVsTime || m == ElevationVsTime
}

// ParseMode accepts a menu label or a slug, case-insensitively.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes() {
		if key == strings.ToLower(modeNames[m]) || key == modeSlugs[m] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown plot mode %q", s)
}

// MarshalText encodes the mode as its slug.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid plot mode %d", int(m))
	}
	return []byte(m.Slug()), nil
}

// UnmarshalText decodes a label or slug.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarkerSize is the symbol size, in pixels, of measurement markers. It only
// affects styling; series coordinates never depend on it.
type MarkerSize int

const (
	MarkerSmall  MarkerSize = 5
	MarkerMedium MarkerSize = 10
	MarkerBig    MarkerSize = 15
)

// String returns the menu label.
func (s MarkerSize) String() string {
	switch s {
	case MarkerSmall:
		return "Small"
	case MarkerMedium:
		return "Medium"
	case MarkerBig:
		return "Big"
	}
	return fmt.Sprintf("%dpx", int(s))
}

// Valid reports whether s is one of the three menu sizes.
func (s MarkerSize) Valid() bool {
	return s == MarkerSmall || s == MarkerMedium || s == MarkerBig
}

// ParseMarkerSize maps "small", "medium" and "big" (or "large") to sizes.
func ParseMarkerSize(s string) (MarkerSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return MarkerSmall, nil
	case "medium":
		return MarkerMedium, nil
	case "big", "large":
		return MarkerBig, nil
	}
	return 0, fmt.Errorf("unknown marker size %q (want small, medium or big)", s)
}

// MarshalText encodes the size label.
func (s MarkerSize) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a size label.
func (s *MarkerSize) UnmarshalText(b []byte) error {
	parsed, err := ParseMarkerSize(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
