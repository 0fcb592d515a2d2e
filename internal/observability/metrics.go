package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard pipeline.
type Metrics struct {
	Loads         *prometheus.CounterVec // labels: outcome={ok,file_not_found,parse_error,error}
	LoadCache     *prometheus.CounterVec // labels: result={hit,miss}
	CoercionSkips *prometheus.CounterVec // labels: field
	RowsLoaded    prometheus.Gauge
	PipelineReady prometheus.Gauge

	// Recomputation metrics.
	Refreshes       *prometheus.CounterVec // labels: outcome={ok,error}
	RefreshDuration prometheus.Histogram
	RowsSelected    prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Loads,
		m.LoadCache,
		m.CoercionSkips,
		m.RowsLoaded,
		m.PipelineReady,
		m.Refreshes,
		m.RefreshDuration,
		m.RowsSelected,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exposed. One-shot
// commands such as aqreport use it since they serve no /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_dashboard",
			Name:      "dataset_loads_total",
			Help:      "File reads by outcome. Cache hits are not counted.",
		}, []string{"outcome"}),
		LoadCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_dashboard",
			Name:      "load_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		CoercionSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_dashboard",
			Name:      "coercion_skips_total",
			Help:      "Cells that failed numeric parsing and were read as missing.",
		}, []string{"field"}),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aq_dashboard",
			Name:      "rows_loaded",
			Help:      "Number of records in the most recently read dataset.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aq_dashboard",
			Name:      "pipeline_ready",
			Help:      "1 once the configured dataset has loaded, 0 otherwise.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_dashboard",
			Name:      "refreshes_total",
			Help:      "View recomputations by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aq_dashboard",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a filter-aggregate-correlate pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RowsSelected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aq_dashboard",
			Name:      "rows_selected",
			Help:      "Records remaining after the year and range filters.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
}
