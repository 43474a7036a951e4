package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the PM2.5 pipeline.
type Metrics struct {
	ArchivesAssembled prometheus.Counter
	ArchiveRows       *prometheus.GaugeVec // labels: year
	MidnightShifts    *prometheus.GaugeVec // labels: year
	UnmappedColumns   *prometheus.GaugeVec // labels: year
	CommonStations    prometheus.Gauge
	MergedRows        prometheus.Gauge

	AdjustmentOutcomes *prometheus.CounterVec // labels: rule, status

	// Archive source metrics.
	ArchiveFetchDuration prometheus.Histogram
	ArchiveCache         *prometheus.CounterVec // labels: result={hit,miss}

	RecordsPublished prometheus.Counter
	PipelineRuns     *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration      prometheus.Histogram
}

const namespace = "pm25_etl"

func newMetrics() *Metrics {
	return &Metrics{
		ArchivesAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_assembled_total",
			Help:      "Yearly archives cleaned and code-mapped.",
		}),
		ArchiveRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_rows",
			Help:      "Hourly rows in the cleaned archive, per year.",
		}, []string{"year"}),
		MidnightShifts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_midnight_shifts",
			Help:      "Midnight end-of-hour labels moved back one second, per year.",
		}, []string{"year"}),
		UnmappedColumns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_unmapped_columns",
			Help:      "Columns whose station code has no legacy mapping, per year.",
		}, []string{"year"}),
		CommonStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "common_stations",
			Help:      "Stations present in every requested year.",
		}),
		MergedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merged_rows",
			Help:      "Rows in the merged multi-year series.",
		}),
		AdjustmentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exceedance_adjustments_total",
			Help:      "Exceedance adjustment attempts by rule and status.",
		}, []string{"rule", "status"}),
		ArchiveFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_fetch_duration_seconds",
			Help:      "Time to download and read one yearly archive.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ArchiveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_cache_total",
			Help:      "Raw archive cache lookups by result.",
		}, []string{"result"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Exceedance records written to the sink topic.",
		}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete assemble-merge-aggregate run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ArchivesAssembled,
		m.ArchiveRows,
		m.MidnightShifts,
		m.UnmappedColumns,
		m.CommonStations,
		m.MergedRows,
		m.AdjustmentOutcomes,
		m.ArchiveFetchDuration,
		m.ArchiveCache,
		m.RecordsPublished,
		m.PipelineRuns,
		m.RunDuration,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
