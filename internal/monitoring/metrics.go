package monitoring

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the console's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Runs          *prometheus.CounterVec
	RunDurations  prometheus.Histogram
	TracksLoaded  prometheus.Gauge
	TracksVisible prometheus.Gauge
	Renders       *prometheus.CounterVec
	SeriesDrawn   *prometheus.CounterVec
	SeriesDropped *prometheus.CounterVec
	LogLoads      *prometheus.CounterVec
}

// NewMetrics registers the console metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackconsole_runs_total",
		Help: "Processing runs, labeled by result (ok, empty, error, busy).",
	}, []string{"result"}), "trackconsole_runs_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trackconsole_run_duration_seconds",
		Help:    "Wall time of tracking engine runs in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}), "trackconsole_run_duration_seconds")
	if err != nil {
		return nil, err
	}
	loaded, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trackconsole_tracks_loaded",
		Help: "Number of tracks currently in the track store.",
	}), "trackconsole_tracks_loaded")
	if err != nil {
		return nil, err
	}
	visible, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trackconsole_tracks_visible",
		Help: "Number of tracks currently selected for display.",
	}), "trackconsole_tracks_visible")
	if err != nil {
		return nil, err
	}
	renders, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackconsole_renders_total",
		Help: "Plot redraws, labeled by plot mode.",
	}, []string{"mode"}), "trackconsole_renders_total")
	if err != nil {
		return nil, err
	}
	drawn, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackconsole_series_drawn_total",
		Help: "Series handed to a rendering backend, labeled by plot mode.",
	}, []string{"mode"}), "trackconsole_series_drawn_total")
	if err != nil {
		return nil, err
	}
	dropped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackconsole_series_dropped_total",
		Help: "Series a rendering backend rejected, labeled by plot mode.",
	}, []string{"mode"}), "trackconsole_series_dropped_total")
	if err != nil {
		return nil, err
	}
	logLoads, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackconsole_log_loads_total",
		Help: "Tabular log loads, labeled by log kind and result.",
	}, []string{"kind", "result"}), "trackconsole_log_loads_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:      gatherer,
		Runs:          runs,
		RunDurations:  durations,
		TracksLoaded:  loaded,
		TracksVisible: visible,
		Renders:       renders,
		SeriesDrawn:   drawn,
		SeriesDropped: dropped,
		LogLoads:      logLoads,
	}, nil
}

// Handler exposes the registry the metrics were registered against.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveRun records one processing run.
func (m *Metrics) ObserveRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
	if d > 0 {
		m.RunDurations.Observe(d.Seconds())
	}
}

// SetTrackCounts updates the store and selection gauges.
func (m *Metrics) SetTrackCounts(loaded, visible int) {
	if m == nil {
		return
	}
	m.TracksLoaded.Set(float64(loaded))
	m.TracksVisible.Set(float64(visible))
}

// ObserveRender records one redraw.
func (m *Metrics) ObserveRender(mode string, drawn, dropped int) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(mode).Inc()
	m.SeriesDrawn.WithLabelValues(mode).Add(float64(drawn))
	m.SeriesDropped.WithLabelValues(mode).Add(float64(dropped))
}

// ObserveLogLoad records one tabular log load.
func (m *Metrics) ObserveLogLoad(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LogLoads.WithLabelValues(kind, result).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
