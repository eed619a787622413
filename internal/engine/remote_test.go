package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trackconsole/internal/httputil"
	"github.com/banshee-data/trackconsole/internal/tracks"
)

func TestRemoteSendsRequest(t *testing.T) {
	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusOK, `[{"track_id": 3, "measurements": [[100, 45, 2, 0.5]], "Sf": [[1, 2, 3]]}]`)
	e := Remote{URL: "http://tracker:9000/process", Client: mock}

	req := Request{InputFile: "/data/scan.csv", Params: DefaultParams(), System: DefaultSystemConfig()}
	ts, err := e.Process(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, ts, 1)
	assert.Equal(t, 3, ts[0].ID)
	assert.Equal(t, tracks.Measurement{Range: 100, Azimuth: 45, Elevation: 2, Time: 0.5}, ts[0].Measurements[0])

	httpReq, body := mock.Request(0)
	require.NotNil(t, httpReq)
	assert.Equal(t, http.MethodPost, httpReq.Method)
	assert.Equal(t, "application/json", httpReq.Header.Get("Content-Type"))

	var sent Request
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, req, sent)
}

func TestRemoteErrors(t *testing.T) {
	req := Request{InputFile: "/data/scan.csv", Params: DefaultParams()}

	mock := httputil.NewMockHTTPClient().AddResponse(http.StatusBadGateway, "tracker offline\n")
	_, err := Remote{URL: "http://tracker", Client: mock}.Process(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502: tracker offline")

	mock = httputil.NewMockHTTPClient().AddErrorResponse(errors.New("connection refused"))
	_, err = Remote{URL: "http://tracker", Client: mock}.Process(context.Background(), req)
	assert.ErrorContains(t, err, "connection refused")

	mock = httputil.NewMockHTTPClient().AddResponse(http.StatusOK, `{"tracks":`)
	_, err = Remote{URL: "http://tracker", Client: mock}.Process(context.Background(), req)
	assert.Error(t, err)

	_, err = Remote{URL: "http://tracker", Client: mock}.Process(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestRemoteEmptyResult(t *testing.T) {
	mock := httputil.NewMockHTTPClient().AddResponse(http.StatusOK, "null")
	ts, err := Remote{URL: "http://tracker", Client: mock}.Process(context.Background(), Request{InputFile: "a"})
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestRemoteOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = tracks.Encode(w, []tracks.Track{{ID: int(req.TrackInit)}})
	}))
	defer srv.Close()

	ts, err := Remote{URL: srv.URL}.Process(context.Background(), Request{InputFile: "a", Params: Params{TrackInit: SevenState}})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, 7, ts[0].ID)
}
