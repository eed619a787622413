// Package console is the single owner of the console's mutable state: the
// Track Store, the selection, the plot dispatcher and the operator's
// choices. Every operation runs under one mutex and ends with a redraw, so
// the views always reflect the latest store and selection.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/trackconsole/internal/archive"
	"github.com/banshee-data/trackconsole/internal/dispatch"
	"github.com/banshee-data/trackconsole/internal/engine"
	"github.com/banshee-data/trackconsole/internal/fsutil"
	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/plotdata"
	"github.com/banshee-data/trackconsole/internal/render"
	"github.com/banshee-data/trackconsole/internal/selection"
	"github.com/banshee-data/trackconsole/internal/tablelog"
	"github.com/banshee-data/trackconsole/internal/timeutil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

var (
	// ErrNoInputFile is returned by Process before any input file is chosen.
	ErrNoInputFile = errors.New("no input file selected")
	// ErrBusy is returned while a processing run is in flight.
	ErrBusy = errors.New("processing already in progress")
	// ErrNoArchive is returned by run operations when no archive is configured.
	ErrNoArchive = errors.New("run archive not configured")
)

// Archive is the subset of the run archive the session uses.
type Archive interface {
	SaveRun(ctx context.Context, run archive.Run) (string, error)
	LoadRun(ctx context.Context, id string) (archive.Run, error)
	Runs(ctx context.Context, limit int) ([]archive.RunSummary, error)
	DeleteRun(ctx context.Context, id string) error
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Engine   engine.Engine
	Reporter monitoring.Reporter
	Metrics  *monitoring.Metrics
	Archive  Archive
	FS       fsutil.FileSystem
	Clock    timeutil.Clock

	// LogDir holds the engine's CSV logs.
	LogDir    string
	RunsLimit int

	Params engine.Params
	System engine.SystemConfig
	Mode   plotdata.Mode
	Marker plotdata.MarkerSize

	// Surfaces are drawn on in addition to the session's own scene.
	Surfaces []dispatch.Surface
}

// Session serialises every operator action against the shared state.
type Session struct {
	mu sync.Mutex

	store *tracks.Store
	sel   *selection.State
	disp  *dispatch.Dispatcher
	scene *render.Scene

	params engine.Params
	system engine.SystemConfig
	marker plotdata.MarkerSize
	input  string
	runID  string
	busy   bool

	engine    engine.Engine
	reporter  monitoring.Reporter
	metrics   *monitoring.Metrics
	archive   Archive
	fs        fsutil.FileSystem
	clock     timeutil.Clock
	logDir    string
	runsLimit int
}

// New builds a session and draws the initial, empty view.
func New(opts Options) (*Session, error) {
	if opts.Engine == nil {
		return nil, errors.New("console: engine is required")
	}
	if opts.Params == (engine.Params{}) {
		opts.Params = engine.DefaultParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	if opts.System == (engine.SystemConfig{}) {
		opts.System = engine.DefaultSystemConfig()
	}
	if err := opts.System.Validate(); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	if opts.Marker == 0 {
		opts.Marker = plotdata.MarkerMedium
	}
	if !opts.Marker.Valid() {
		return nil, fmt.Errorf("console: invalid marker size %s", opts.Marker)
	}
	if opts.Reporter == nil {
		opts.Reporter = monitoring.LogReporter{}
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.LogDir == "" {
		opts.LogDir = "."
	}
	if opts.RunsLimit <= 0 {
		opts.RunsLimit = 50
	}

	scene := render.NewScene()
	disp := dispatch.New(scene)
	for _, s := range opts.Surfaces {
		disp.Attach(s)
	}
	if err := disp.SetMode(opts.Mode); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	s := &Session{
		store:     tracks.NewStore(),
		sel:       selection.New(),
		disp:      disp,
		scene:     scene,
		params:    opts.Params,
		system:    opts.System,
		marker:    opts.Marker,
		engine:    opts.Engine,
		reporter:  opts.Reporter,
		metrics:   opts.Metrics,
		archive:   opts.Archive,
		fs:        opts.FS,
		clock:     opts.Clock,
		logDir:    opts.LogDir,
		runsLimit: opts.RunsLimit,
	}
	s.redraw()
	return s, nil
}

// State is a point-in-time view of the session for display.
type State struct {
	InputFile  string              `json:"input_file"`
	Params     engine.Params       `json:"params"`
	System     engine.SystemConfig `json:"system"`
	Mode       plotdata.Mode       `json:"mode"`
	Marker     plotdata.MarkerSize `json:"marker_size"`
	Processing bool                `json:"processing"`
	Generation uint64              `json:"generation"`
	RunID      string              `json:"run_id,omitempty"`
	Tracks     []tracks.Summary    `json:"tracks"`
	Selection  []selection.Toggle  `json:"selection"`
	AllVisible bool                `json:"all_visible"`
	Revision   uint64              `json:"revision"`
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		InputFile:  s.input,
		Params:     s.params,
		System:     s.system,
		Mode:       s.disp.Mode(),
		Marker:     s.marker,
		Processing: s.busy,
		Generation: s.store.Generation(),
		RunID:      s.runID,
		Tracks:     s.store.Summaries(),
		Selection:  s.sel.Toggles(),
		AllVisible: s.sel.IsAllVisible(),
		Revision:   s.scene.Revision(),
	}
}

// Snapshot returns the rendered scene. It never observes a redraw in
// progress.
func (s *Session) Snapshot() render.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Snapshot()
}

// Tracks returns the tracks of the current store generation.
func (s *Session) Tracks() []tracks.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get()
}

// Track returns one track of the current store generation.
func (s *Session) Track(id int) (tracks.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Find(id)
}

// SelectFile records the detection file the next run processes.
func (s *Session) SelectFile(path string) error {
	if path == "" {
		return ErrNoInputFile
	}
	if _, err := s.fs.Stat(path); err != nil {
		s.reporter.Report(monitoring.LevelError, "Cannot use input file: %v", err)
		return fmt.Errorf("select input file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = path
	s.reporter.Report(monitoring.LevelInfo, "File selected: %s", path)
	return nil
}

// SetParams changes the engine parameters used by the next run.
func (s *Session) SetParams(p engine.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

// SetSystemConfig changes the system configuration used by the next run.
func (s *Session) SetSystemConfig(c engine.SystemConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = c
	return nil
}

// Outcome summarises one processing run.
type Outcome struct {
	RunID    string        `json:"run_id,omitempty"`
	Tracks   int           `json:"tracks"`
	TrackIDs []int         `json:"track_ids"`
	Dropped  int           `json:"dropped"`
	Duration time.Duration `json:"duration_ns"`
}

// Process runs the engine on the selected input file and replaces the
// store with the result. The engine runs without the session lock held,
// so reads and view changes stay responsive; only one run may be in flight.
//
// An engine error empties the store and is returned. An empty result is
// not an error: the store is emptied and the views redraw with no data.
func (s *Session) Process(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.input == "" {
		s.mu.Unlock()
		s.reporter.Report(monitoring.LevelWarn, "Please select an input file.")
		return Outcome{}, ErrNoInputFile
	}
	if s.busy {
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.busy = true
	req := engine.Request{InputFile: s.input, Params: s.params, System: s.system}
	s.mu.Unlock()

	s.reporter.Report(monitoring.LevelInfo, "Processing %s with %s, %s, %s",
		req.InputFile, req.TrackInit, req.Association, req.Filter)

	start := s.clock.Now()
	result, err := s.engine.Process(ctx, req)
	elapsed := s.clock.Since(start)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.replace(nil, "")
		s.mu.Unlock()
		s.metrics.ObserveRun("error", elapsed)
		s.reporter.Report(monitoring.LevelError, "Processing failed: %v", err)
		return Outcome{}, fmt.Errorf("process %s: %w", req.InputFile, err)
	}

	accepted, problems := tracks.Validate(result)
	for _, p := range problems {
		s.reporter.Report(monitoring.LevelWarn, "Dropped %v", p)
	}
	s.replace(accepted, "")
	generation := s.store.Generation()
	ids := s.store.IDs()
	s.mu.Unlock()

	out := Outcome{Tracks: len(accepted), TrackIDs: ids, Dropped: len(problems), Duration: elapsed}
	if len(accepted) == 0 {
		s.metrics.ObserveRun("empty", elapsed)
		s.reporter.Report(monitoring.LevelInfo, "No tracks were generated.")
	} else {
		s.metrics.ObserveRun("ok", elapsed)
		s.reporter.Report(monitoring.LevelInfo, "Number of tracks: %d", len(accepted))
	}

	if s.archive == nil {
		return out, nil
	}
	id, err := s.archive.SaveRun(ctx, archive.Run{
		RunSummary: archive.RunSummary{
			InputFile: req.InputFile,
			Params:    req.Params,
			System:    req.System,
			Duration:  elapsed,
		},
		Tracks: accepted,
	})
	if err != nil {
		monitoring.Logf("console: archive run: %v", err)
		s.reporter.Report(monitoring.LevelWarn, "Run was not archived: %v", err)
		return out, nil
	}
	out.RunID = id

	s.mu.Lock()
	if s.store.Generation() == generation {
		s.runID = id
	}
	s.mu.Unlock()
	return out, nil
}

// Runs lists archived runs, newest first.
func (s *Session) Runs(ctx context.Context) ([]archive.RunSummary, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.Runs(ctx, s.runsLimit)
}

// LoadRun replaces the store with an archived run and restores the
// parameters it was processed with.
func (s *Session) LoadRun(ctx context.Context, id string) (Outcome, error) {
	if s.archive == nil {
		return Outcome{}, ErrNoArchive
	}
	run, err := s.archive.LoadRun(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	accepted, problems := tracks.Validate(run.Tracks)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return Outcome{}, ErrBusy
	}
	s.input = run.InputFile
	s.params = run.Params
	s.system = run.System
	s.replace(accepted, run.ID)

	s.reporter.Report(monitoring.LevelInfo, "Loaded run %s: %d tracks", run.ID, len(accepted))
	return Outcome{
		RunID:    run.ID,
		Tracks:   len(accepted),
		TrackIDs: s.store.IDs(),
		Dropped:  len(problems),
		Duration: run.Duration,
	}, nil
}

// DeleteRun removes an archived run. The tracks on screen stay loaded; they
// are just no longer linked to an archive entry.
func (s *Session) DeleteRun(ctx context.Context, id string) error {
	if s.archive == nil {
		return ErrNoArchive
	}
	if err := s.archive.DeleteRun(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.runID == id {
		s.runID = ""
	}
	s.mu.Unlock()
	s.reporter.Report(monitoring.LevelInfo, "Deleted run %s", id)
	return nil
}

// SetMode switches the plot mode and redraws.
func (s *Session) SetMode(m plotdata.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.disp.SetMode(m); err != nil {
		return err
	}
	s.redraw()
	return nil
}

// SetMarkerSize changes the measurement marker size and redraws the
// current tracks without re-running the engine.
func (s *Session) SetMarkerSize(m plotdata.MarkerSize) error {
	if !m.Valid() {
		return fmt.Errorf("invalid marker size %s", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = m
	s.redraw()
	return nil
}

// SetTrackVisible shows or hides one track. It reports false, changing
// nothing, when id is not in the current store.
func (s *Session) SetTrackVisible(id int, visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sel.SetVisible(id, visible) {
		return false
	}
	s.redraw()
	return true
}

// SetAllVisible shows or hides every track.
func (s *Session) SetAllVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SetAllVisible(visible)
	s.redraw()
}

// ClearPlot empties the plot surfaces. The store and selection are kept;
// the next view change draws them again.
func (s *Session) ClearPlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disp.Clear()
}

// LoadLog reads one of the engine's CSV logs. Failures are reported to the
// operator; the store is never touched.
func (s *Session) LoadLog(kind tablelog.Kind) (tablelog.Table, error) {
	t, err := tablelog.LoadKind(s.fs, s.logDir, kind)
	s.metrics.ObserveLogLoad(kind.String(), err)
	if err != nil {
		s.reporter.Report(monitoring.LevelError, "Error loading CSV file: %v", err)
		return tablelog.Table{}, err
	}
	return t, nil
}

// replace installs a new track generation, resets the selection to all
// visible and redraws. Must be called with s.mu held.
func (s *Session) replace(ts []tracks.Track, runID string) {
	if len(ts) == 0 {
		s.store.Clear()
	} else {
		s.store.Load(ts)
	}
	s.runID = runID
	s.sel.InitializeFromTracks(s.store.Get())
	s.redraw()
}

// redraw must be called with s.mu held.
func (s *Session) redraw() {
	visible := s.sel.VisibleIDs()
	res := s.disp.Render(dispatch.Input{
		Tracks:  s.store.Get(),
		Visible: visible,
		Marker:  s.marker,
	})
	for _, err := range res.Rejected {
		s.reporter.Report(monitoring.LevelWarn, "Not plotted: %v", err)
	}
	s.metrics.ObserveRender(res.Mode.Slug(), res.Drawn, len(res.Rejected))
	s.metrics.SetTrackCounts(s.store.Len(), len(visible))
}
