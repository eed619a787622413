// Package engine is the boundary to the external tracking engine: the request
// the console sends and the adapters that produce tracks from it.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/banshee-data/trackconsole/internal/fsutil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// ErrNoInput is returned when a request names no input file.
var ErrNoInput = errors.New("no input file")

// Request is one processing run.
type Request struct {
	InputFile string `json:"input_file"`
	Params
	System SystemConfig `json:"system"`
}

// Engine turns a request into tracks. A nil or empty result with a nil
// error means the engine produced no tracks.
type Engine interface {
	Process(ctx context.Context, req Request) ([]tracks.Track, error)
}

// Func adapts a function to Engine.
type Func func(ctx context.Context, req Request) ([]tracks.Track, error)

// Process calls f.
func (f Func) Process(ctx context.Context, req Request) ([]tracks.Track, error) {
	return f(ctx, req)
}

// maxStderr bounds how much engine stderr is quoted in errors.
const maxStderr = 4 << 10

// waitDelay bounds how long a killed engine's children may keep its output
// pipes open.
const waitDelay = 2 * time.Second

// Exec runs an external engine program. The request is written to its stdin
// as JSON and the input file is appended as the last argument; the program
// writes the tracks document to stdout.
type Exec struct {
	Command string
	Args    []string
	Env     []string
}

// Process runs the command. Cancelling ctx kills the process.
func (e Exec) Process(ctx context.Context, req Request) ([]tracks.Track, error) {
	if req.InputFile == "" {
		return nil, ErrNoInput
	}
	if e.Command == "" {
		return nil, errors.New("engine command not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	args := append(append([]string(nil), e.Args...), req.InputFile)
	cmd := exec.CommandContext(ctx, e.Command, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(body)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("engine %s: %w", e.Command, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		if msg != "" {
			return nil, fmt.Errorf("engine %s: %w: %s", e.Command, err, msg)
		}
		return nil, fmt.Errorf("engine %s: %w", e.Command, err)
	}

	ts, err := tracks.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", e.Command, err)
	}
	return ts, nil
}

// Replay treats the input file as an already-processed engine result. The
// processing parameters are ignored.
type Replay struct {
	FS fsutil.FileSystem
}

// Process reads and decodes req.InputFile.
func (r Replay) Process(ctx context.Context, req Request) ([]tracks.Track, error) {
	if req.InputFile == "" {
		return nil, ErrNoInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fsys := r.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	data, err := fsys.ReadFile(req.InputFile)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", req.InputFile, err)
	}
	ts, err := tracks.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", req.InputFile, err)
	}
	return ts, nil
}
