package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transformer_records_total",
			Help: "Total number of records processed by the batch driver (count)",
		},
		[]string{"result"},
	)

	TransformErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transformer_errors_total",
			Help: "Total number of record-level transformation errors (count)",
		},
		[]string{"type"},
	)

	TemplateCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_requests_total",
			Help: "Template cache lookups by outcome (count)",
		},
		[]string{"result"},
	)

	PartitionApplyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partition_apply_total",
			Help: "Catalog partition DDL submissions by outcome (count)",
		},
		[]string{"status"},
	)

	TransformDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transform_duration_ms",
			Help:    "Per-record transformation duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"result"},
	)
)

func RegisterTransformerMetrics() {
	prometheus.MustRegister(
		RecordsProcessedTotal,
		TransformErrorsTotal,
		TemplateCacheRequestsTotal,
		PartitionApplyTotal,
		TransformDuration,
	)
}

func ObserveTransformDuration(ms float64, result string) {
	TransformDuration.WithLabelValues(result).Observe(ms)
}
