package monitoring

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/trackconsole/internal/timeutil"
)

// Level classifies an operator-facing message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

// MarshalText encodes the level name.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "info":
		*l = LevelInfo
	case "warn":
		*l = LevelWarn
	case "error":
		*l = LevelError
	default:
		return fmt.Errorf("unknown level %q", b)
	}
	return nil
}

// Reporter receives messages meant for the operator, such as track counts
// and load failures. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(level Level, format string, v ...interface{})
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(level Level, format string, v ...interface{})

// Report calls f.
func (f ReporterFunc) Report(level Level, format string, v ...interface{}) { f(level, format, v...) }

// Discard drops every message.
var Discard Reporter = ReporterFunc(func(Level, string, ...interface{}) {})

// LogReporter forwards operator messages to Logf with a level prefix.
type LogReporter struct{}

// Report writes the message through the package logger.
func (LogReporter) Report(level Level, format string, v ...interface{}) {
	Logf("[%s] %s", level, fmt.Sprintf(format, v...))
}

// Tee fans every message out to each non-nil reporter in order.
func Tee(rs ...Reporter) Reporter {
	var live []Reporter
	for _, r := range rs {
		if r != nil {
			live = append(live, r)
		}
	}
	return ReporterFunc(func(level Level, format string, v ...interface{}) {
		for _, r := range live {
			r.Report(level, format, v...)
		}
	})
}

// Line is one entry of the output panel.
type Line struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// DefaultPanelLines bounds the output panel transcript.
const DefaultPanelLines = 500

// OutputPanel is the operator's message transcript. It keeps the most
// recent lines, oldest first.
type OutputPanel struct {
	mu    sync.Mutex
	clock timeutil.Clock
	max   int
	lines []Line
}

// NewOutputPanel returns a panel holding at most max lines. A max of zero
// or less uses DefaultPanelLines. A nil clock uses the real clock.
func NewOutputPanel(max int, clock timeutil.Clock) *OutputPanel {
	if max <= 0 {
		max = DefaultPanelLines
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &OutputPanel{clock: clock, max: max}
}

// Report appends a line, evicting the oldest when full.
func (p *OutputPanel) Report(level Level, format string, v ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, Line{Time: p.clock.Now(), Level: level, Message: msg})
	if over := len(p.lines) - p.max; over > 0 {
		p.lines = append(p.lines[:0:0], p.lines[over:]...)
	}
}

// Lines returns a copy of the transcript.
func (p *OutputPanel) Lines() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Line, len(p.lines))
	copy(out, p.lines)
	return out
}

// Clear empties the transcript.
func (p *OutputPanel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = nil
}
