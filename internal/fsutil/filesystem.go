// Package fsutil abstracts the few filesystem operations the console
// performs, so sessions, engines and log loaders can run against memory in
// tests.
package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// FileSystem is the console's view of storage. OSFileSystem is used in
// production and MemoryFileSystem in tests.
type FileSystem interface {
	Open(name string) (fs.File, error)
	Create(name string) (io.WriteCloser, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
}

// OSFileSystem delegates to package os.
type OSFileSystem struct{}

func (OSFileSystem) Open(name string) (fs.File, error)          { return os.Open(name) }
func (OSFileSystem) Create(name string) (io.WriteCloser, error) { return os.Create(name) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }
func (OSFileSystem) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// MemoryFileSystem keeps files in a map keyed by cleaned, slash-separated
// path. Writing a file implicitly creates its parent directories.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]bool
}

type memFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemoryFileSystem returns an empty filesystem containing only "/".
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string]memFile),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

func clean(name string) string { return path.Clean(filepath.ToSlash(name)) }

// Open returns a read-only snapshot of the named file.
func (m *MemoryFileSystem) Open(name string) (fs.File, error) {
	name = clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memReader{Reader: bytes.NewReader(f.data), info: f.info(name)}, nil
}

// Create truncates name; the written bytes become visible on Close.
func (m *MemoryFileSystem) Create(name string) (io.WriteCloser, error) {
	name = clean(name)
	if err := m.WriteFile(name, nil, 0o644); err != nil {
		return nil, err
	}
	return &memWriter{fs: m, name: name}, nil
}

// ReadFile returns a copy of the file's contents.
func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	name = clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return bytes.Clone(f.data), nil
}

// WriteFile stores a copy of data. Writing over a directory fails.
func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	name = clean(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirs[name] {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrInvalid}
	}
	m.mkdirs(path.Dir(name))
	m.files[name] = memFile{data: bytes.Clone(data), mode: perm, modTime: time.Now()}
	return nil
}

// Stat describes a file or directory.
func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	name = clean(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dirs[name] {
		return memInfo{name: path.Base(name), mode: fs.ModeDir | 0o755}, nil
	}
	f, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return f.info(name), nil
}

// MkdirAll records dir and its parents. It fails if any of them is a file.
func (m *MemoryFileSystem) MkdirAll(dir string, perm os.FileMode) error {
	dir = clean(dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := dir; ; p = path.Dir(p) {
		if _, ok := m.files[p]; ok {
			return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
		}
		if p == "/" || p == "." {
			break
		}
	}
	m.mkdirs(dir)
	return nil
}

func (m *MemoryFileSystem) mkdirs(dir string) {
	for p := dir; !m.dirs[p]; p = path.Dir(p) {
		m.dirs[p] = true
	}
}

func (f memFile) info(name string) memInfo {
	return memInfo{name: path.Base(name), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}
}

type memReader struct {
	*bytes.Reader
	info memInfo
}

func (r *memReader) Stat() (fs.FileInfo, error) { return r.info, nil }
func (r *memReader) Close() error               { return nil }

type memWriter struct {
	fs     *MemoryFileSystem
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if w.closed {
		return fs.ErrClosed
	}
	w.closed = true
	return w.fs.WriteFile(w.name, w.buf.Bytes(), 0o644)
}

type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }
