// Package metrics registers observability metrics for the ingestion job.
package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "solar_etl_"

	// ResultSuccess and ResultError label run and stage outcomes.
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	runTotal   *prometheus.CounterVec
	runLatency *prometheus.HistogramVec

	stageTotal   *prometheus.CounterVec
	stageLatency *prometheus.HistogramVec

	rowsReconciled   prometheus.Counter
	transferFailures prometheus.Counter

	reportExportTotal *prometheus.CounterVec
)

// Init registers job metrics and DB-backed row-count gauges over the
// configured tables.
func Init(db *sql.DB, logger *log.Logger, tables TableNames) {
	registerOnce.Do(func() {
		runTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "run_total",
				Help: "Total ingestion runs by result",
			},
			[]string{"result"},
		)
		runLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "run_latency_seconds",
				Help:    "Ingestion run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		stageTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stage_total",
				Help: "Total pipeline stage executions by stage and result",
			},
			[]string{"stage", "result"},
		)
		stageLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "stage_latency_seconds",
				Help:    "Pipeline stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		)

		rowsReconciled = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_reconciled_total",
				Help: "Total raw reading rows reconciled into storage",
			},
		)
		transferFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "transfer_failures_total",
				Help: "Total failed CSV downloads",
			},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total monthly report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			runTotal,
			runLatency,
			stageTotal,
			stageLatency,
			rowsReconciled,
			transferFailures,
			reportExportTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger, tables)
		}
	})
}

// ObserveRun records one pipeline run.
func ObserveRun(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if runTotal != nil {
		runTotal.WithLabelValues(result).Inc()
	}
	if runLatency != nil {
		runLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStage records one pipeline stage execution.
func ObserveStage(stage, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if stageTotal != nil {
		stageTotal.WithLabelValues(stage, result).Inc()
	}
	if stageLatency != nil {
		stageLatency.WithLabelValues(stage).Observe(duration.Seconds())
	}
}

// AddRowsReconciled counts reconciled raw rows.
func AddRowsReconciled(n int) {
	if rowsReconciled != nil && n > 0 {
		rowsReconciled.Add(float64(n))
	}
}

// IncTransferFailure counts one failed download.
func IncTransferFailure() {
	if transferFailures != nil {
		transferFailures.Inc()
	}
}

// IncReportExport counts one report export.
func IncReportExport(format, result string) {
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
}
