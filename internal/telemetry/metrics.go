// Package telemetry holds the prometheus metrics recorded by pipeline runs.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application registry served on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// PipelineRunsTotal counts runs by outcome ("ok", "no_data", "error").
var PipelineRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "eloca",
	Name:      "pipeline_runs_total",
	Help:      "Pipeline runs by outcome",
}, []string{"outcome"})

// PipelineDurationSeconds tracks the wall time of a full run.
var PipelineDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "eloca",
	Name:      "pipeline_duration_seconds",
	Help:      "Time taken to fetch, clean and aggregate both reports",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
})

// FetchFailuresTotal counts sources degraded to empty.
var FetchFailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "eloca",
	Name:      "fetch_failures_total",
	Help:      "Source fetches that failed and were degraded to empty",
}, []string{"source"})

// SourceRows tracks the rows loaded from each source on the last run.
var SourceRows = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "eloca",
	Name:      "source_rows",
	Help:      "Data rows loaded from each source on the last run",
}, []string{"source"})

// ParseErrorsTotal counts cells that failed coercion.
var ParseErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "eloca",
	Name:      "parse_errors_total",
	Help:      "Cells that failed coercion, by source and column",
}, []string{"source", "column"})

// SchemaWarningsTotal counts columns that could not be resolved.
var SchemaWarningsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "eloca",
	Name:      "schema_warnings_total",
	Help:      "Columns that could not be resolved against source headers",
}, []string{"source", "column"})

// CSATDuplicatesRemoved tracks survey rows dropped by deduplication on the last run.
var CSATDuplicatesRemoved = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "eloca",
	Name:      "csat_duplicates_removed",
	Help:      "Survey rows removed by ticket deduplication on the last run",
})
