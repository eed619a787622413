// Package tablelog loads the tabular CSV logs the tracking engine writes
// alongside its results, for display as read-only tables.
package tablelog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trackconsole/internal/fsutil"
)

// ErrMalformed is wrapped by every error caused by file content rather than
// file access.
var ErrMalformed = errors.New("malformed csv log")

// MaxSize is the largest log accepted.
const MaxSize = 32 << 20

// Kind names one of the engine's log files.
type Kind int

const (
	DetailedLog Kind = iota
	TrackSummary
)

var kindFiles = [...]string{
	DetailedLog:  "detailed_log.csv",
	TrackSummary: "track_summary.csv",
}

// FileName returns the file the engine writes for k.
func (k Kind) FileName() string {
	if k < DetailedLog || k > TrackSummary {
		return ""
	}
	return kindFiles[k]
}

// String returns the file name without extension, e.g. "detailed_log".
func (k Kind) String() string {
	if name := k.FileName(); name != "" {
		return strings.TrimSuffix(name, ".csv")
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "detailed_log", "detailed-log", "track_summary" or the
// full file names.
func ParseKind(s string) (Kind, error) {
	key := strings.TrimSuffix(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"), ".csv")
	for k := range kindFiles {
		if key == Kind(k).String() {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown log kind %q (want detailed_log or track_summary)", s)
}

// Table is a loaded log: the header row and every data row as text.
// Rows may be ragged; cells are never interpreted.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Load reads a CSV document whose first record is the header row.
func Load(r io.Reader) (Table, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(data) > MaxSize {
		return Table{}, fmt.Errorf("%w: larger than %d bytes", ErrMalformed, MaxSize)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	t := Table{Headers: headers, Rows: [][]string{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// LoadFile reads path from fsys.
func LoadFile(fsys fsutil.FileSystem, path string) (Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadKind reads the log of kind k from dir.
func LoadKind(fsys fsutil.FileSystem, dir string, k Kind) (Table, error) {
	name := k.FileName()
	if name == "" {
		return Table{}, fmt.Errorf("unknown log kind %d", int(k))
	}
	return LoadFile(fsys, filepath.Join(dir, name))
}
