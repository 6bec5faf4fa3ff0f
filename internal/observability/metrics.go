package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the power curve pipeline.
type Metrics struct {
	Runs         *prometheus.CounterVec // labels: outcome={success,ingestion_error,canceled,empty_dataset,error}
	RunsInFlight prometheus.Gauge

	RecordsIngested prometheus.Counter
	RecordsDropped  prometheus.Counter // missing wind speed or power
	RowsSkipped     prometheus.Counter // no turbine identifier

	TurbinesRendered   prometheus.Counter
	UnknownModels      prometheus.Counter
	EmptyCharts        prometheus.Counter
	FilenameCollisions prometheus.Counter
	RenderDuration     prometheus.Histogram

	ArchiveBytes prometheus.Histogram
	SinkErrors   *prometheus.CounterVec // labels: sink={object_store,manifest}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.Runs,
		m.RunsInFlight,
		m.RecordsIngested,
		m.RecordsDropped,
		m.RowsSkipped,
		m.TurbinesRendered,
		m.UnknownModels,
		m.EmptyCharts,
		m.FilenameCollisions,
		m.RenderDuration,
		m.ArchiveBytes,
		m.SinkErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "power_curve",
			Name:      "runs_in_flight",
			Help:      "Pipeline runs currently executing.",
		}),
		RecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "records_ingested_total",
			Help:      "Telemetry records read from uploaded exports.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "records_dropped_total",
			Help:      "Records not plotted because wind speed or power was missing.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "rows_skipped_total",
			Help:      "Rows ignored because they had no turbine identifier.",
		}),
		TurbinesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "turbines_rendered_total",
			Help:      "Charts rendered and archived.",
		}),
		UnknownModels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "unknown_model_charts_total",
			Help:      "Charts drawn without a reference curve.",
		}),
		EmptyCharts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "empty_charts_total",
			Help:      "Charts drawn without any operating points.",
		}),
		FilenameCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "filename_collisions_total",
			Help:      "Archive entries renamed because their computed name was taken.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "power_curve",
			Name:      "render_duration_seconds",
			Help:      "Time to render and archive one turbine chart.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}),
		ArchiveBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "power_curve",
			Name:      "archive_size_bytes",
			Help:      "Size of finished archives.",
			Buckets:   prometheus.ExponentialBuckets(64<<10, 4, 8),
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "power_curve",
			Name:      "sink_errors_total",
			Help:      "Failed deliveries of finished archives by sink.",
		}, []string{"sink"}),
	}
}
