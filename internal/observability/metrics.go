package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "iloc_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the enrichment run.
type Metrics struct {
	EventsProcessed  prometheus.Counter
	EventErrors      *prometheus.CounterVec // labels: reason={no_origin,no_arrivals,station_not_found,relocation,other}
	RelocatedOrigins prometheus.Counter
	PipelineRunning  prometheus.Gauge

	StationsSelected prometheus.Histogram
	RunDuration      prometheus.Histogram

	SelectionCache *prometheus.CounterVec // labels: result={hit,miss}
	SinkWrites     *prometheus.CounterVec // labels: sink, outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EventsProcessed,
		m.EventErrors,
		m.RelocatedOrigins,
		m.PipelineRunning,
		m.StationsSelected,
		m.RunDuration,
		m.SelectionCache,
		m.SinkWrites,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Total events enriched with a station selection.",
		}),
		EventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_errors_total",
			Help:      "Events that could not be enriched, by reason.",
		}, []string{"reason"}),
		RelocatedOrigins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relocated_origins_total",
			Help:      "Origins added by the relocation invoker.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while an enrichment run is in progress, 0 otherwise.",
		}),
		StationsSelected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stations_selected",
			Help:      "Number of stations selected per origin.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-enrich-save run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SelectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_cache_total",
			Help:      "Station selection cache lookups by result.",
		}, []string{"result"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Enriched catalog writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
