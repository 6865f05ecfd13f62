package batch

import (
	"context"
	"strings"
	"time"

	"lakehose/internal/constants"
	"lakehose/internal/logger"
	"lakehose/internal/partition"
	"lakehose/internal/transform"
	"lakehose/pkg/logging"
	"lakehose/pkg/metrics"
)

type Normalizer interface {
	Normalize(ctx context.Context, payload []byte) (transform.Status, []string)
}

type PartitionResolver interface {
	Resolve(ctx context.Context, records []string) (partition.Key, error)
	Apply(ctx context.Context, key partition.Key)
}

type ErrorReporter interface {
	Emit(ctx context.Context, errorType string)
}

// Driver walks an inbound batch record by record. Every input record
// yields exactly one outbound record, in input order, and a failure
// never stops the rest of the batch.
type Driver struct {
	normalizer Normalizer
	partitions PartitionResolver
	reporter   ErrorReporter
	logger     logger.Logger
}

func NewDriver(normalizer Normalizer, partitions PartitionResolver, reporter ErrorReporter, log logger.Logger) *Driver {
	return &Driver{
		normalizer: normalizer,
		partitions: partitions,
		reporter:   reporter,
		logger:     log,
	}
}

func (d *Driver) ProcessBatch(ctx context.Context, in InboundEvent) OutboundEvent {
	out := OutboundEvent{
		Records: make([]OutboundRecord, 0, len(in.Records)),
	}

	for _, record := range in.Records {
		recordCtx := logging.WithRecordID(ctx, record.RecordID)
		start := time.Now()

		outRecord := d.processRecord(recordCtx, record)

		metrics.RecordsProcessedTotal.WithLabelValues(outRecord.Result).Inc()
		metrics.ObserveTransformDuration(float64(time.Since(start).Milliseconds()), outRecord.Result)

		out.Records = append(out.Records, outRecord)
	}

	d.logger.InfowCtx(ctx, "Batch processing completed",
		"records", len(out.Records),
	)
	return out
}

func (d *Driver) processRecord(ctx context.Context, record InboundRecord) OutboundRecord {
	status, records := d.normalizer.Normalize(ctx, record.Data)

	outRecord := OutboundRecord{
		RecordID: record.RecordID,
		Data:     []byte{},
	}

	switch {
	case status == transform.StatusOk && len(records) > 0:
		key, err := d.partitions.Resolve(ctx, records)
		if err != nil {
			// The first canonical record must carry a usable
			// timestamp; without one the record is undeliverable.
			d.reporter.Emit(ctx, constants.MetricTemplateError)
			d.logger.ErrorwCtx(ctx, "Failed to derive partition", "error", err)
			outRecord.Result = constants.ResultProcessingFailed
			return outRecord
		}
		d.partitions.Apply(ctx, key)

		// Concatenated with no separator: the destination's columnar
		// conversion does its own record splitting.
		outRecord.Data = []byte(strings.Join(records, ""))
		outRecord.Result = constants.ResultOk
		outRecord.Metadata = &RecordMetadata{PartitionKeys: &key}

	case status == transform.StatusOk || status == transform.StatusDropped:
		// Recognized but intentionally empty. Tagged Ok so the stream
		// counts it successful without routing it to error output.
		outRecord.Result = constants.ResultOk

	default:
		outRecord.Result = constants.ResultProcessingFailed
	}

	return outRecord
}
