package api

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/banshee-data/trackconsole/internal/archive"
	"github.com/banshee-data/trackconsole/internal/console"
	"github.com/banshee-data/trackconsole/internal/engine"
	"github.com/banshee-data/trackconsole/internal/httputil"
	"github.com/banshee-data/trackconsole/internal/monitoring"
	"github.com/banshee-data/trackconsole/internal/plotdata"
	"github.com/banshee-data/trackconsole/internal/security"
	"github.com/banshee-data/trackconsole/internal/tablelog"
)

// writeError maps session errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, console.ErrNoInputFile):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, security.ErrOutsideAllowed):
		httputil.WriteJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, console.ErrBusy):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, console.ErrNoArchive):
		httputil.WriteJSONError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, archive.ErrRunNotFound), errors.Is(err, fs.ErrNotExist):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, tablelog.ErrMalformed):
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.InternalServerError(w, err.Error())
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.session.State())
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	ts := s.session.Tracks()
	if ts == nil {
		httputil.WriteJSONOK(w, []struct{}{})
		return
	}
	httputil.WriteJSONOK(w, ts)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.BadRequest(w, "invalid track id")
		return
	}
	t, ok := s.session.Track(id)
	if !ok {
		httputil.NotFound(w, "track "+strconv.Itoa(id)+" is not loaded")
		return
	}
	httputil.WriteJSONOK(w, t)
}

type inputRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, inputRequest{Path: s.session.State().InputFile})
	case http.MethodPost, http.MethodPut:
		var req inputRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := security.CheckWithinAny(req.Path, s.inputs); err != nil {
			writeError(w, err)
			return
		}
		if err := s.session.SelectFile(req.Path); err != nil {
			writeError(w, err)
			return
		}
		httputil.WriteJSONOK(w, req)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.session.State().Params)
	case http.MethodPost, http.MethodPut:
		var p engine.Params
		if err := httputil.DecodeJSON(r, &p); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := s.session.SetParams(p); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, p)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.session.State().System)
	case http.MethodPost, http.MethodPut:
		var c engine.SystemConfig
		if err := httputil.DecodeJSON(r, &c); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := s.session.SetSystemConfig(c); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, c)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	ctx, cancel := s.processContext(r)
	defer cancel()

	out, err := s.session.Process(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, out)
}

type modeRequest struct {
	Mode plotdata.Mode `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, modeRequest{Mode: s.session.State().Mode})
	case http.MethodPost, http.MethodPut:
		var req modeRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := s.session.SetMode(req.Mode); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, req)
	default:
		httputil.MethodNotAllowed(w)
	}
}

type markerRequest struct {
	Marker plotdata.MarkerSize `json:"marker_size"`
}

func (s *Server) handleMarker(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, markerRequest{Marker: s.session.State().Marker})
	case http.MethodPost, http.MethodPut:
		var req markerRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := s.session.SetMarkerSize(req.Marker); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, req)
	default:
		httputil.MethodNotAllowed(w)
	}
}

type visibleRequest struct {
	Visible *bool `json:"visible"`
}

func decodeVisible(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req visibleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return false, false
	}
	if req.Visible == nil {
		httputil.BadRequest(w, "visible is required")
		return false, false
	}
	return *req.Visible, true
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st := s.session.State()
		httputil.WriteJSONOK(w, map[string]interface{}{
			"all_visible": st.AllVisible,
			"tracks":      st.Selection,
		})
	case http.MethodPost, http.MethodPut:
		visible, ok := decodeVisible(w, r)
		if !ok {
			return
		}
		s.session.SetAllVisible(visible)
		httputil.WriteJSONOK(w, s.session.State().Selection)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleSelectTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.BadRequest(w, "invalid track id")
		return
	}
	visible, ok := decodeVisible(w, r)
	if !ok {
		return
	}
	if !s.session.SetTrackVisible(id, visible) {
		httputil.NotFound(w, "track "+strconv.Itoa(id)+" is not loaded")
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{"track_id": id, "visible": visible})
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	if s.panel == nil {
		httputil.NotFound(w, "output panel not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.panel.Lines())
	case http.MethodDelete:
		s.panel.Clear()
		httputil.WriteJSONOK(w, []monitoring.Line{})
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	kind, err := tablelog.ParseKind(r.PathValue("kind"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	t, err := s.session.LoadLog(kind)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, t)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := s.session.Runs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	if err := s.session.DeleteRun(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"deleted": id})
}

func (s *Server) handleRunLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	out, err := s.session.LoadRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, out)
}
