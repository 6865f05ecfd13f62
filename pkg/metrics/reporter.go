package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"lakehose/internal/logger"
)

// ErrorReporter publishes named error counters to the external metrics
// sink that alarms are built on.
type ErrorReporter interface {
	Emit(ctx context.Context, errorType string)
}

type cloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type CloudWatchReporter struct {
	client    cloudWatchAPI
	namespace string
	logger    logger.Logger
}

func NewCloudWatchReporter(client *cloudwatch.Client, namespace string, log logger.Logger) *CloudWatchReporter {
	return &CloudWatchReporter{
		client:    client,
		namespace: namespace,
		logger:    log,
	}
}

// Emit publishes one ErrorCount data point dimensioned by error type.
// Publish failures are logged and swallowed; losing a counter sample
// must never fail record processing.
func (r *CloudWatchReporter) Emit(ctx context.Context, errorType string) {
	TransformErrorsTotal.WithLabelValues(errorType).Inc()

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("ErrorCount"),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(1),
				Dimensions: []types.Dimension{
					{
						Name:  aws.String("ErrorType"),
						Value: aws.String(errorType),
					},
				},
			},
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.WarnwCtx(ctx, "Failed to publish error metric",
			"error", err,
			"error_type", errorType,
		)
	}
}

// PromReporter counts errors locally only. Used when CloudWatch
// publishing is disabled and in tests.
type PromReporter struct{}

func NewPromReporter() *PromReporter {
	return &PromReporter{}
}

func (r *PromReporter) Emit(_ context.Context, errorType string) {
	TransformErrorsTotal.WithLabelValues(errorType).Inc()
}
