package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ingestion pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge

	// Cycle metrics.
	Cycles        *prometheus.CounterVec // labels: trigger={scheduled,manual}
	CycleDuration prometheus.Histogram
	HourFetches   *prometheus.CounterVec // labels: outcome={success,error}
	RowsRaw       prometheus.Counter
	RowsKept      prometheus.Counter
	Objects       prometheus.Gauge
	SinkErrors    prometheus.Counter

	// Wind enrichment metrics.
	WindRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	WindCache       *prometheus.CounterVec // labels: result={hit,miss}
	WindAPIDuration prometheus.Histogram
	WindEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_drift",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "cycles_total",
			Help:      "Completed ingestion cycles by trigger.",
		}, []string{"trigger"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "balloon_drift",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-build-enrich cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		HourFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "hour_fetches_total",
			Help:      "Hourly snapshot fetches by outcome.",
		}, []string{"outcome"}),
		RowsRaw: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "rows_raw_total",
			Help:      "Total rows read from successful hourly snapshots.",
		}),
		RowsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "rows_kept_total",
			Help:      "Total rows accepted by normalization.",
		}),
		Objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_drift",
			Name:      "objects",
			Help:      "Distinct objects in the most recent published cycle.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "sink_errors_total",
			Help:      "Snapshot sink write failures.",
		}),
		WindRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "wind_requests_total",
			Help:      "Wind service requests by outcome.",
		}, []string{"outcome"}),
		WindCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "balloon_drift",
			Name:      "wind_cache_total",
			Help:      "Wind cache lookups by result.",
		}, []string{"result"}),
		WindAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "balloon_drift",
			Name:      "wind_api_duration_seconds",
			Help:      "Wind service request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WindEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "balloon_drift",
			Name:      "wind_enabled",
			Help:      "1 when wind enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.PipelineRunning,
		m.Cycles,
		m.CycleDuration,
		m.HourFetches,
		m.RowsRaw,
		m.RowsKept,
		m.Objects,
		m.SinkErrors,
		m.WindRequests,
		m.WindCache,
		m.WindAPIDuration,
		m.WindEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_drift", Name: "pipeline_running"}),
		Cycles:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "cycles_total"}, []string{"trigger"}),
		CycleDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "balloon_drift", Name: "cycle_duration_seconds"}),
		HourFetches:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "hour_fetches_total"}, []string{"outcome"}),
		RowsRaw:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "rows_raw_total"}),
		RowsKept:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "rows_kept_total"}),
		Objects:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_drift", Name: "objects"}),
		SinkErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "sink_errors_total"}),
		WindRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "wind_requests_total"}, []string{"outcome"}),
		WindCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "balloon_drift", Name: "wind_cache_total"}, []string{"result"}),
		WindAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "balloon_drift", Name: "wind_api_duration_seconds"}),
		WindEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "balloon_drift", Name: "wind_enabled"}),
	}
}
