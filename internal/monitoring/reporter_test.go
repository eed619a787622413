package monitoring

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackconsole/internal/timeutil"
)

func TestOutputPanel(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(start)
	p := NewOutputPanel(3, clock)

	p.Report(LevelInfo, "Number of tracks: %d", 4)
	clock.Advance(time.Second)
	p.Report(LevelError, "Error loading CSV file: %s\n", "bad header")

	lines := p.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Time: start, Level: LevelInfo, Message: "Number of tracks: 4"}, lines[0])
	assert.Equal(t, "Error loading CSV file: bad header", lines[1].Message)
	assert.Equal(t, start.Add(time.Second), lines[1].Time)

	p.Clear()
	assert.Empty(t, p.Lines())
}

func TestOutputPanelEvictsOldest(t *testing.T) {
	p := NewOutputPanel(2, nil)
	for i := 0; i < 5; i++ {
		p.Report(LevelInfo, "line %d", i)
	}

	lines := p.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "line 3", lines[0].Message)
	assert.Equal(t, "line 4", lines[1].Message)
}

func TestOutputPanelLinesIsCopy(t *testing.T) {
	p := NewOutputPanel(0, nil)
	p.Report(LevelWarn, "first")

	lines := p.Lines()
	lines[0].Message = "mutated"
	assert.Equal(t, "first", p.Lines()[0].Message)
}

func TestOutputPanelConcurrent(t *testing.T) {
	p := NewOutputPanel(1000, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Report(LevelInfo, "%d-%d", i, j)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, p.Lines(), 400)
}

func TestTee(t *testing.T) {
	a := NewOutputPanel(10, nil)
	b := NewOutputPanel(10, nil)

	r := Tee(a, nil, b)
	r.Report(LevelWarn, "No tracks to plot.")

	assert.Equal(t, "No tracks to plot.", a.Lines()[0].Message)
	assert.Equal(t, LevelWarn, b.Lines()[0].Level)
}

func TestLogReporter(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = fmt.Sprintf(format, v...) })

	LogReporter{}.Report(LevelError, "engine failed: %v", "exit status 2")
	assert.Equal(t, "[error] engine failed: exit status 2", got)

	Discard.Report(LevelError, "ignored")
}

func TestLevelText(t *testing.T) {
	for level, want := range map[Level]string{LevelInfo: "info", LevelWarn: "warn", LevelError: "error"} {
		b, err := level.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(b))

		var back Level
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, level, back)
	}
	var l Level
	assert.Error(t, l.UnmarshalText([]byte("debug")))
}
