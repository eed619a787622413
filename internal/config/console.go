package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/trackconsole/internal/engine"
	"github.com/banshee-data/trackconsole/internal/plotdata"
)

// DefaultConfigPath is the path to the canonical console defaults file.
const DefaultConfigPath = "config/console.defaults.json"

// maxFileSize bounds config files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// ConsoleConfig is the console's startup configuration. Every field is
// optional; the Get* methods supply defaults for anything omitted, so
// partial configs are safe.
type ConsoleConfig struct {
	// Tracking engine
	EngineCommand *string  `json:"engine_command,omitempty" yaml:"engine_command,omitempty"`
	EngineArgs    []string `json:"engine_args,omitempty" yaml:"engine_args,omitempty"`
	EngineTimeout *string  `json:"engine_timeout,omitempty" yaml:"engine_timeout,omitempty"` // duration string like "5m"
	// EngineURL selects a remote engine service instead of a local command.
	EngineURL *string `json:"engine_url,omitempty" yaml:"engine_url,omitempty"`

	// Initial processing choices
	TrackInit   *string `json:"track_init,omitempty" yaml:"track_init,omitempty"`
	Filter      *string `json:"filter,omitempty" yaml:"filter,omitempty"`
	Association *string `json:"association,omitempty" yaml:"association,omitempty"`

	// Initial display
	PlotMode   *string `json:"plot_mode,omitempty" yaml:"plot_mode,omitempty"`
	MarkerSize *string `json:"marker_size,omitempty" yaml:"marker_size,omitempty"`

	// Where detailed_log.csv and track_summary.csv are read from
	LogDir *string `json:"log_dir,omitempty" yaml:"log_dir,omitempty"`
	// InputDirs limits which files HTTP clients may select. Empty allows any.
	InputDirs []string `json:"input_dirs,omitempty" yaml:"input_dirs,omitempty"`

	PanelLines       *int `json:"panel_lines,omitempty" yaml:"panel_lines,omitempty"`
	RenderCacheSize  *int `json:"render_cache_size,omitempty" yaml:"render_cache_size,omitempty"`
	ArchiveRunsLimit *int `json:"archive_runs_limit,omitempty" yaml:"archive_runs_limit,omitempty"`

	System *SystemConfig `json:"system,omitempty" yaml:"system,omitempty"`
}

// SystemConfig mirrors engine.SystemConfig with optional fields. Intervals
// are written as [min, max].
type SystemConfig struct {
	TargetSpeed    *[2]float64 `json:"target_speed,omitempty" yaml:"target_speed,omitempty"`
	TargetAltitude *[2]float64 `json:"target_altitude,omitempty" yaml:"target_altitude,omitempty"`
	RangeGate      *[2]float64 `json:"range_gate,omitempty" yaml:"range_gate,omitempty"`
	AzimuthGate    *[2]float64 `json:"azimuth_gate,omitempty" yaml:"azimuth_gate,omitempty"`
	ElevationGate  *[2]float64 `json:"elevation_gate,omitempty" yaml:"elevation_gate,omitempty"`
	PlantNoise     *float64    `json:"plant_noise,omitempty" yaml:"plant_noise,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyConsoleConfig returns a ConsoleConfig with all fields set to nil.
func EmptyConsoleConfig() *ConsoleConfig {
	return &ConsoleConfig{}
}

// LoadConsoleConfig loads a ConsoleConfig from a .json, .yaml or .yml file
// of at most 1MB and validates it.
func LoadConsoleConfig(path string) (*ConsoleConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConsoleConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ConsoleConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/trackconsole/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadConsoleConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every set value parses and the system limits are
// consistent. All problems are reported together.
func (c *ConsoleConfig) Validate() error {
	var errs []error

	if c.EngineTimeout != nil && *c.EngineTimeout != "" {
		if d, err := time.ParseDuration(*c.EngineTimeout); err != nil {
			errs = append(errs, fmt.Errorf("invalid engine_timeout '%s': %w", *c.EngineTimeout, err))
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("engine_timeout must be non-negative, got %s", d))
		}
	}
	if c.EngineURL != nil && *c.EngineURL != "" {
		if u, err := url.Parse(*c.EngineURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid engine_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("engine_url must be http or https, got %q", *c.EngineURL))
		}
	}
	if c.TrackInit != nil {
		if _, err := engine.ParseTrackInit(*c.TrackInit); err != nil {
			errs = append(errs, fmt.Errorf("track_init: %w", err))
		}
	}
	if c.Filter != nil {
		if _, err := engine.ParseFilter(*c.Filter); err != nil {
			errs = append(errs, fmt.Errorf("filter: %w", err))
		}
	}
	if c.Association != nil {
		if _, err := engine.ParseAssociation(*c.Association); err != nil {
			errs = append(errs, fmt.Errorf("association: %w", err))
		}
	}
	if c.PlotMode != nil {
		if _, err := plotdata.ParseMode(*c.PlotMode); err != nil {
			errs = append(errs, fmt.Errorf("plot_mode: %w", err))
		}
	}
	if c.MarkerSize != nil {
		if _, err := plotdata.ParseMarkerSize(*c.MarkerSize); err != nil {
			errs = append(errs, fmt.Errorf("marker_size: %w", err))
		}
	}
	for _, dir := range c.InputDirs {
		if dir == "" {
			errs = append(errs, errors.New("input_dirs must not contain empty entries"))
		}
	}
	for name, v := range map[string]*int{
		"panel_lines":        c.PanelLines,
		"render_cache_size":  c.RenderCacheSize,
		"archive_runs_limit": c.ArchiveRunsLimit,
	} {
		if v != nil && *v < 1 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, *v))
		}
	}
	if err := c.GetSystemConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("system: %w", err))
	}
	return errors.Join(errs...)
}

// GetEngineCommand returns the engine program, or "" for none.
func (c *ConsoleConfig) GetEngineCommand() string {
	if c.EngineCommand == nil {
		return ""
	}
	return *c.EngineCommand
}

// GetEngineURL returns the remote engine endpoint, or "" for none.
func (c *ConsoleConfig) GetEngineURL() string {
	if c.EngineURL == nil {
		return ""
	}
	return *c.EngineURL
}

// GetEngineArgs returns the arguments placed before the input file.
func (c *ConsoleConfig) GetEngineArgs() []string {
	return append([]string(nil), c.EngineArgs...)
}

// GetEngineTimeout returns the per-run engine timeout. Zero means none.
func (c *ConsoleConfig) GetEngineTimeout() time.Duration {
	if c.EngineTimeout == nil || *c.EngineTimeout == "" {
		return 10 * time.Minute // default
	}
	d, err := time.ParseDuration(*c.EngineTimeout)
	if err != nil {
		return 10 * time.Minute // default on parse error
	}
	return d
}

// GetParams returns the initial processing choices.
func (c *ConsoleConfig) GetParams() engine.Params {
	p := engine.DefaultParams()
	if c.TrackInit != nil {
		if v, err := engine.ParseTrackInit(*c.TrackInit); err == nil {
			p.TrackInit = v
		}
	}
	if c.Filter != nil {
		if v, err := engine.ParseFilter(*c.Filter); err == nil {
			p.Filter = v
		}
	}
	if c.Association != nil {
		if v, err := engine.ParseAssociation(*c.Association); err == nil {
			p.Association = v
		}
	}
	return p
}

// GetPlotMode returns the initial plot mode.
func (c *ConsoleConfig) GetPlotMode() plotdata.Mode {
	if c.PlotMode != nil {
		if m, err := plotdata.ParseMode(*c.PlotMode); err == nil {
			return m
		}
	}
	return plotdata.RangeVsTime
}

// GetMarkerSize returns the initial marker size.
func (c *ConsoleConfig) GetMarkerSize() plotdata.MarkerSize {
	if c.MarkerSize != nil {
		if s, err := plotdata.ParseMarkerSize(*c.MarkerSize); err == nil {
			return s
		}
	}
	return plotdata.MarkerMedium
}

// GetLogDir returns the directory holding the engine's CSV logs.
func (c *ConsoleConfig) GetLogDir() string {
	if c.LogDir == nil || *c.LogDir == "" {
		return "."
	}
	return *c.LogDir
}

// GetInputDirs returns the directories HTTP clients may select input from.
func (c *ConsoleConfig) GetInputDirs() []string {
	return c.InputDirs
}

// GetPanelLines returns the output panel capacity.
func (c *ConsoleConfig) GetPanelLines() int {
	if c.PanelLines == nil {
		return 500
	}
	return *c.PanelLines
}

// GetRenderCacheSize returns the number of rendered plots kept in memory.
func (c *ConsoleConfig) GetRenderCacheSize() int {
	if c.RenderCacheSize == nil {
		return 64
	}
	return *c.RenderCacheSize
}

// GetArchiveRunsLimit returns how many archived runs are listed.
func (c *ConsoleConfig) GetArchiveRunsLimit() int {
	if c.ArchiveRunsLimit == nil {
		return 50
	}
	return *c.ArchiveRunsLimit
}

// GetSystemConfig merges the configured system limits over the defaults.
func (c *ConsoleConfig) GetSystemConfig() engine.SystemConfig {
	out := engine.DefaultSystemConfig()
	s := c.System
	if s == nil {
		return out
	}
	set := func(dst *engine.Bounds, src *[2]float64) {
		if src != nil {
			*dst = engine.Bounds{Min: src[0], Max: src[1]}
		}
	}
	set(&out.TargetSpeed, s.TargetSpeed)
	set(&out.TargetAltitude, s.TargetAltitude)
	set(&out.RangeGate, s.RangeGate)
	set(&out.AzimuthGate, s.AzimuthGate)
	set(&out.ElevationGate, s.ElevationGate)
	if s.PlantNoise != nil {
		out.PlantNoise = *s.PlantNoise
	}
	return out
}
