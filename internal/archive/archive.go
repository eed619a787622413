// Package archive stores processing runs in SQLite so earlier results can be
// listed and replayed into the console.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/trackconsole/internal/engine"
	"github.com/banshee-data/trackconsole/internal/timeutil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

type DB struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Open opens (creating if needed) the archive at path and migrates it to
// the latest schema.
func Open(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the archive without touching its schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return &DB{DB: sqlDB, path: path, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the clock used to stamp new runs.
func (db *DB) SetClock(c timeutil.Clock) { db.clock = c }

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// RunSummary describes an archived run without its tracks.
type RunSummary struct {
	ID         string              `json:"run_id"`
	CreatedAt  time.Time           `json:"created_at"`
	InputFile  string              `json:"input_file"`
	Params     engine.Params       `json:"params"`
	System     engine.SystemConfig `json:"system"`
	TrackCount int                 `json:"track_count"`
	Duration   time.Duration       `json:"duration_ns"`
}

// Run is an archived run with its tracks in engine order.
type Run struct {
	RunSummary
	Tracks []tracks.Track `json:"tracks"`
}

// SaveRun stores run, assigning a new id and timestamp when they are unset,
// and returns the id.
func (db *DB) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = db.clock.Now()
	}
	system, err := json.Marshal(run.System)
	if err != nil {
		return "", fmt.Errorf("encode system config: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
			run_id, created_at, input_file, track_init, filter, association,
			system_json, track_count, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.InputFile,
		run.Params.TrackInit.String(), run.Params.Filter.String(), run.Params.Association.String(),
		string(system), len(run.Tracks), run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_tracks (
			run_id, position, track_id, measurements, states,
			start_time, end_time, min_range, max_range, track_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, t := range run.Tracks {
		body, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("encode track %d: %w", t.ID, err)
		}
		s := tracks.Summarize(t)
		if _, err := stmt.ExecContext(ctx, run.ID, i, t.ID, s.Measurements, s.States,
			s.StartTime, s.EndTime, s.MinRange, s.MaxRange, string(body)); err != nil {
			return "", fmt.Errorf("insert track %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

const runColumns = `run_id, created_at, input_file, track_init, filter, association, system_json, track_count, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		s                               RunSummary
		createdAt, durationMs           int64
		trackInit, filter, assoc, sysJS string
	)
	if err := row.Scan(&s.ID, &createdAt, &s.InputFile, &trackInit, &filter, &assoc, &sysJS, &s.TrackCount, &durationMs); err != nil {
		return RunSummary{}, err
	}
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	s.Duration = time.Duration(durationMs) * time.Millisecond

	var err error
	if s.Params.TrackInit, err = engine.ParseTrackInit(trackInit); err != nil {
		return RunSummary{}, err
	}
	if s.Params.Filter, err = engine.ParseFilter(filter); err != nil {
		return RunSummary{}, err
	}
	if s.Params.Association, err = engine.ParseAssociation(assoc); err != nil {
		return RunSummary{}, err
	}
	if err := json.Unmarshal([]byte(sysJS), &s.System); err != nil {
		return RunSummary{}, fmt.Errorf("decode system config: %w", err)
	}
	return s, nil
}

// Runs lists the most recent runs, newest first.
func (db *DB) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadRun returns the run with id and its tracks.
func (db *DB) LoadRun(ctx context.Context, id string) (Run, error) {
	s, err := scanSummary(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := db.QueryContext(ctx, `SELECT track_json FROM run_tracks WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	run := Run{RunSummary: s, Tracks: []tracks.Track{}}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return Run{}, err
		}
		var t tracks.Track
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return Run{}, fmt.Errorf("decode archived track: %w", err)
		}
		run.Tracks = append(run.Tracks, t)
	}
	return run, rows.Err()
}

// DeleteRun removes a run and its tracks.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_tracks WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}
