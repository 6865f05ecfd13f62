package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MetricsNamespace is the CloudWatch namespace the error counters
	// are published under.
	MetricsNamespace = "FirehoseTransformer"

	// Error counter names consumed by downstream alarms. Renaming them
	// breaks existing dashboards, so they keep their historical values.
	MetricJSONParsingError = "JsonParsingError"
	MetricTemplateError    = "VelocityTemplateError"
)

// Outbound record results understood by the delivery stream.
const (
	ResultOk               = "Ok"
	ResultDropped          = "Dropped"
	ResultProcessingFailed = "ProcessingFailed"
)

const (
	DefaultCacheExpirationSeconds = 900
	DefaultAthenaWorkGroup        = "primary"
	DefaultPartitionQueriesPerMin = 30
)
