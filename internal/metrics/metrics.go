// Package metrics provides Prometheus metrics for the task-data decoder.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the decoder.
type Metrics struct {
	// Task metrics
	TasksDecoded *prometheus.CounterVec
	TasksPlanned *prometheus.CounterVec

	// Run metrics
	RunsDecoded *prometheus.CounterVec
	RunsSkipped *prometheus.CounterVec

	// Volume metrics
	SamplesDecoded *prometheus.CounterVec
	ExportBytes    *prometheus.HistogramVec

	// Timing metrics
	DecodeDuration *prometheus.HistogramVec
	ExportDuration *prometheus.HistogramVec

	// Error metrics
	StorageErrors *prometheus.CounterVec
	CatalogErrors *prometheus.CounterVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for metrics HTTP server (e.g., ":9090")
}

// Init initializes the global metrics. Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "taskdata_decoder"
	}

	labels := []string{"taskdata_dir"}

	return &Metrics{
		TasksDecoded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_decoded_total",
				Help:      "Total number of logged tasks decoded",
			},
			labels,
		),
		TasksPlanned: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_planned_total",
				Help:      "Total number of planned tasks (metadata only)",
			},
			labels,
		),
		RunsDecoded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_decoded_total",
				Help:      "Total number of time-log runs decoded",
			},
			labels,
		),
		RunsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_skipped_total",
				Help:      "Total number of runs skipped (missing or unreadable inputs)",
			},
			labels,
		),
		SamplesDecoded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_decoded_total",
				Help:      "Total number of samples appended across all series",
			},
			labels,
		),
		ExportBytes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_bytes",
				Help:      "Size of exported parquet payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 15), // 1KB to ~16MB
			},
			labels,
		),
		DecodeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decode_duration_seconds",
				Help:      "Time to decode one task-data directory",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			labels,
		),
		ExportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Time to export one task's tables to storage",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			labels,
		),
		StorageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of export storage errors",
			},
			[]string{"backend"},
		),
		CatalogErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_errors_total",
				Help:      "Total number of run-catalog write errors",
			},
			labels,
		),
	}
}

// Serve starts the metrics HTTP server on the configured address. It blocks,
// so run it in a goroutine.
func Serve(cfg Config) error {
	if !cfg.Enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(cfg.Address, mux)
}
