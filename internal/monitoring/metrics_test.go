package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveRun("ok", 250*time.Millisecond)
	m.ObserveRun("empty", 0)
	m.SetTrackCounts(5, 3)
	m.ObserveRender("ppi", 4, 1)
	m.ObserveLogLoad("detailed_log", nil)
	m.ObserveLogLoad("track_summary", errors.New("bad"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("empty")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.TracksLoaded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TracksVisible))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("ppi")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SeriesDrawn.WithLabelValues("ppi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeriesDropped.WithLabelValues("ppi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogLoads.WithLabelValues("track_summary", "error")))
}

func TestMetricsRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	first.ObserveRender("rhi", 1, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Renders.WithLabelValues("rhi")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRun("ok", time.Second)
	m.SetTrackCounts(1, 1)
	m.ObserveRender("range", 1, 0)
	m.ObserveLogLoad("detailed_log", nil)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.ObserveRun("error", time.Second)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.True(t, strings.Contains(string(body), `trackconsole_runs_total{result="error"} 1`), string(body))
}
