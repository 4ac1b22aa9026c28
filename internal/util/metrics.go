package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	RowsIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_rows_ingested_total",
		Help: "Raw rows loaded per source table",
	}, []string{"table"})

	RowsDerivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_rows_derived_total",
		Help: "Rows produced per derived table",
	}, []string{"table"})

	DateParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_date_parse_failures_total",
		Help: "Date cells that failed coercion and were nulled",
	}, []string{"table", "column"})

	DatasetDownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etl_dataset_downloads_total",
		Help: "Dataset archive downloads (cache misses)",
	})

	DatasetCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etl_dataset_cache_hits_total",
		Help: "Runs served entirely from the local CSV cache",
	})

	RunsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_runs_failed_total",
		Help: "Pipeline runs that ended in a fatal error",
	}, []string{"stage"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_stage_duration_seconds",
		Help:    "Wall time per pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	TablesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_tables_published_total",
		Help: "Derived tables written per sink",
	}, []string{"sink"})
)

// PushMetrics pushes all registered metrics to a Pushgateway. A batch
// job has no scrape endpoint, so metrics leave with the run.
func PushMetrics(gateway, job string) error {
	return push.New(gateway, job).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
