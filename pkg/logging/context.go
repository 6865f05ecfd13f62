package logging

import (
	"context"
)

const (
	RecordIDKey    = "record_id"
	BatchIDKey     = "batch_id"
	ServiceNameKey = "service_name"
)

func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, RecordIDKey, recordID)
}

func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, BatchIDKey, batchID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetRecordID(ctx context.Context) string {
	if recordID, ok := ctx.Value(RecordIDKey).(string); ok {
		return recordID
	}
	return ""
}

func GetBatchID(ctx context.Context) string {
	if batchID, ok := ctx.Value(BatchIDKey).(string); ok {
		return batchID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if recordID := GetRecordID(ctx); recordID != "" {
		fields = append(fields, "record_id", recordID)
	}

	if batchID := GetBatchID(ctx); batchID != "" {
		fields = append(fields, "batch_id", batchID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
