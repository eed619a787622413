package monitoring

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// NewRotatingLogf returns a logger writing to path, rotated by size, together
// with the closer for the underlying file. If also is non-nil every line is
// written there as well (typically os.Stderr).
func NewRotatingLogf(path string, also io.Writer) (func(format string, v ...interface{}), io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
	}
	var out io.Writer = w
	if also != nil {
		out = io.MultiWriter(w, also)
	}
	l := log.New(out, "", log.LstdFlags|log.Lmicroseconds)
	return l.Printf, w
}
