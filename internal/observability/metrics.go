// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	DeploymentsReceived prometheus.Counter
	SourceFetches       *prometheus.CounterVec
	IngestionErrors     *prometheus.CounterVec
	InflightAssessments prometheus.Gauge

	// Audit metrics
	FlagsDetected *prometheus.CounterVec

	// Classification metrics
	TokenAssessments    *prometheus.CounterVec
	DeployerAssessments *prometheus.CounterVec
	PipelineErrors      *prometheus.CounterVec
	PipelineLatency     prometheus.Histogram

	// Output metrics
	ReportsEmitted    prometheus.Counter
	SinkPublishErrors prometheus.Counter
	ArchiveErrors     prometheus.Counter

	// Database metrics
	DBQueryErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulReport prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rugwatch"
	}

	return &Metrics{
		DeploymentsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "deployments_received_total",
			Help:      "Total number of deployment events received",
		}),
		SourceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "source_fetches_total",
			Help:      "Total number of verified-source fetches by status",
		}, []string{"status"}),
		IngestionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by type",
		}, []string{"error_type"}),
		InflightAssessments: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "inflight_assessments",
			Help:      "Number of contract assessments currently in flight",
		}),
		FlagsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "flags_detected_total",
			Help:      "Total number of risk flags detected by flag name",
		}, []string{"flag"}),
		TokenAssessments: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "token_assessments_total",
			Help:      "Total number of token assessments by label",
		}, []string{"label"}),
		DeployerAssessments: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "deployer_assessments_total",
			Help:      "Total number of deployer assessments by label",
		}, []string{"label"}),
		PipelineErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Total number of pipeline errors by kind",
		}, []string{"kind"}),
		PipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "latency_seconds",
			Help:      "End-to-end per-contract pipeline latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "reports_emitted_total",
			Help:      "Total number of reports emitted",
		}),
		SinkPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "sink_publish_errors_total",
			Help:      "Total number of report sink publish errors",
		}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "archive_errors_total",
			Help:      "Total number of report archive errors",
		}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		LastSuccessfulReport: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_report_timestamp",
			Help:      "Unix timestamp of the last successfully emitted report",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
