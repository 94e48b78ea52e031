// Package metrics exports pipeline and tracking telemetry to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/judgestat/infrastructure/tracking"
	"github.com/ahrav/judgestat/internal/application"
	"github.com/ahrav/judgestat/internal/ports"
)

const namespace = "judgestat"

// unknownLabel fills label values the caller did not supply.
const unknownLabel = "unknown"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// Known metric names from the pipeline and the tracking middlewares map to
// dedicated vectors; anything else lands in generic vectors keyed by the
// metric name.
type PrometheusMetrics struct {
	stageDuration   *prometheus.HistogramVec
	stageTotal      *prometheus.CounterVec
	datasetRecords  *prometheus.GaugeVec
	agreementRate   *prometheus.GaugeVec
	reportArtifacts *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec

	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	observations     *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// every vector with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		// Pipeline metrics.
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Execution time of each pipeline stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "status"},
		),
		stageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_stages_total",
				Help:      "Total number of pipeline stages run, by outcome.",
			},
			[]string{"stage", "status"},
		),
		datasetRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_records",
				Help:      "Number of records in the last loaded dataset.",
			},
			[]string{"source"},
		),
		agreementRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "agreement_rate_percent",
				Help:      "Overall human-model agreement of the last summarized dataset.",
			},
			[]string{"source"},
		),
		reportArtifacts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_artifacts",
				Help:      "Number of files written per reporter run.",
				Buckets:   []float64{0, 1, 2, 4, 8},
			},
			[]string{"reporter"},
		),

		// Tracking sink metrics.
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tracking_request_duration_seconds",
				Help:      "Latency of tracking sink calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"sink", "operation", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tracking_requests_total",
				Help:      "Total number of tracking sink calls, by outcome.",
			},
			[]string{"sink", "operation", "status"},
		),
		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracking_circuit_state",
				Help:      "Circuit breaker state per sink (0 closed, 1 open, 2 half-open).",
			},
			[]string{"sink"},
		),

		// Generic fallbacks.
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Counters recorded under names without a dedicated metric.",
			},
			[]string{"metric", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Gauges recorded under names without a dedicated metric.",
			},
			[]string{"metric"},
		),
		observations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "observations",
				Help:      "Histogram and latency values recorded under names without a dedicated metric.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	switch operation {
	case application.MetricStageDuration:
		pm.stageDuration.WithLabelValues(label(labels, "stage"), label(labels, "status")).Observe(duration.Seconds())
	case tracking.MetricRequestDuration:
		pm.requestDuration.WithLabelValues(
			label(labels, "sink"), label(labels, "operation"), label(labels, "status"),
		).Observe(duration.Seconds())
	default:
		pm.observations.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case application.MetricStageTotal:
		pm.stageTotal.WithLabelValues(label(labels, "stage"), label(labels, "status")).Add(value)
	case tracking.MetricRequestsTotal:
		pm.requestTotal.WithLabelValues(
			label(labels, "sink"), label(labels, "operation"), label(labels, "status"),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, label(labels, "status")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	switch metric {
	case application.MetricDatasetRecords:
		pm.datasetRecords.WithLabelValues(label(labels, "source")).Set(value)
	case application.MetricAgreementRate:
		pm.agreementRate.WithLabelValues(label(labels, "source")).Set(value)
	case tracking.MetricCircuitState:
		pm.circuitState.WithLabelValues(label(labels, "sink")).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case application.MetricArtifacts:
		pm.reportArtifacts.WithLabelValues(label(labels, "reporter")).Observe(value)
	case tracking.MetricRequestDuration:
		pm.requestDuration.WithLabelValues(
			label(labels, "sink"), label(labels, "operation"), label(labels, "status"),
		).Observe(value)
	default:
		pm.observations.WithLabelValues(metric).Observe(value)
	}
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return unknownLabel
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
