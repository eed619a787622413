package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/banshee-data/trackconsole/internal/console"
	"github.com/banshee-data/trackconsole/internal/monitoring"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// renderTTL bounds how long an unused rendered plot stays cached.
const renderTTL = 30 * time.Minute

// AdminRoutes mounts debug pages on a mux.
type AdminRoutes interface {
	AttachAdminRoutes(mux *http.ServeMux) error
}

// Options configures a Server.
type Options struct {
	Panel   *monitoring.OutputPanel
	Metrics *monitoring.Metrics
	// Admin, when set, adds the archive debug routes under /debug/.
	Admin AdminRoutes
	// RenderCacheSize is the number of rendered plots kept. Zero uses 64.
	RenderCacheSize int
	// ProcessTimeout bounds one engine run. Zero means no limit.
	ProcessTimeout time.Duration
	// InputDirs restricts POST /api/input to files under these directories.
	InputDirs []string
}

// Server exposes a console session over HTTP.
type Server struct {
	session *console.Session
	panel   *monitoring.OutputPanel
	metrics *monitoring.Metrics
	admin   AdminRoutes
	timeout time.Duration
	inputs  []string
	renders *expirable.LRU[renderKey, []byte]
}

// NewServer wraps session.
func NewServer(session *console.Session, opts Options) *Server {
	size := opts.RenderCacheSize
	if size <= 0 {
		size = 64
	}
	return &Server{
		session: session,
		panel:   opts.Panel,
		metrics: opts.Metrics,
		admin:   opts.Admin,
		timeout: opts.ProcessTimeout,
		inputs:  opts.InputDirs,
		renders: expirable.NewLRU[renderKey, []byte](size, nil, renderTTL),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the console routes.
func (s *Server) ServeMux() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/api/tracks/{id}", s.handleTrack)
	mux.HandleFunc("/api/input", s.handleInput)
	mux.HandleFunc("/api/params", s.handleParams)
	mux.HandleFunc("/api/system", s.handleSystem)
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/marker", s.handleMarker)
	mux.HandleFunc("/api/selection", s.handleSelectAll)
	mux.HandleFunc("/api/selection/{id}", s.handleSelectTrack)
	mux.HandleFunc("/api/plot.png", s.handlePlotPNG)
	mux.HandleFunc("/api/plot.html", s.handlePlotHTML)
	mux.HandleFunc("/api/plot/scene", s.handlePlotScene)
	mux.HandleFunc("/api/plot/clear", s.handlePlotClear)
	mux.HandleFunc("/api/output", s.handleOutput)
	mux.HandleFunc("/api/logs/{kind}", s.handleLog)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/{id}", s.handleRun)
	mux.HandleFunc("/api/runs/{id}/load", s.handleRunLoad)
	mux.Handle("/metrics", s.metrics.Handler())

	if s.admin != nil {
		if err := s.admin.AttachAdminRoutes(mux); err != nil {
			return nil, err
		}
	}
	return mux, nil
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() (http.Handler, error) {
	mux, err := s.ServeMux()
	if err != nil {
		return nil, err
	}
	return LoggingMiddleware(mux), nil
}

// processContext detaches a run from the request so a dropped client does
// not kill the engine, while still honouring the configured timeout.
func (s *Server) processContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
