package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/banshee-data/trackconsole/internal/httputil"
	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/render"
)

// renderKey identifies one rendered document. The scene revision changes
// on every redraw, so stale entries are never served.
type renderKey struct {
	format   string
	revision uint64
	width    int
	height   int
}

func (s *Server) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	width, err := sizeParam(r, "width")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	height, err := sizeParam(r, "height")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	width, height = render.ClampSize(width, height)

	snap := s.session.Snapshot()
	s.serveRender(w, renderKey{format: "png", revision: snap.Revision, width: width, height: height}, "image/png",
		func(buf *bytes.Buffer) error { return render.WritePNG(buf, snap, width, height) })
}

func (s *Server) handlePlotHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	snap := s.session.Snapshot()
	s.serveRender(w, renderKey{format: "html", revision: snap.Revision}, "text/html; charset=utf-8",
		func(buf *bytes.Buffer) error { return render.WriteHTML(buf, snap) })
}

func (s *Server) serveRender(w http.ResponseWriter, key renderKey, contentType string, draw func(*bytes.Buffer) error) {
	body, ok := s.renders.Get(key)
	cache := "hit"
	if !ok {
		cache = "miss"
		var buf bytes.Buffer
		if err := draw(&buf); err != nil {
			monitoring.Logf("api: render %s: %v", key.format, err)
			httputil.InternalServerError(w, "failed to render plot")
			return
		}
		body = buf.Bytes()
		s.renders.Add(key, body)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Scene-Revision", strconv.FormatUint(key.revision, 10))
	w.Header().Set("X-Render-Cache", cache)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		monitoring.Logf("api: write %s: %v", key.format, err)
	}
}

func (s *Server) handlePlotScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	snap := s.session.Snapshot()
	httputil.WriteJSONOK(w, struct {
		render.Snapshot
		Series int `json:"series"`
	}{snap, snap.SeriesCount()})
}

func (s *Server) handlePlotClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	s.session.ClearPlot()
	httputil.WriteJSONOK(w, map[string]uint64{"revision": s.session.Snapshot().Revision})
}

func sizeParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &paramError{name: name, value: v}
	}
	return n, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid '" + e.name + "' parameter: " + strconv.Quote(e.value)
}
