package partition

import (
	"context"
	"fmt"

	"lakehose/internal/logger"
	"lakehose/pkg/metrics"
)

// Resolver derives partition keys for a record's canonical outputs
// and applies them to the catalog on a best-effort basis.
type Resolver struct {
	catalog Catalog
	logger  logger.Logger
}

// NewResolver wraps catalog; a nil catalog disables partition DDL
// while keeping key derivation for outbound metadata.
func NewResolver(catalog Catalog, log logger.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  log,
	}
}

// Resolve derives the key from the first canonical record only. All
// records fanned out of one envelope share that key. When a later
// record crosses an hour boundary this undercounts its partition; the
// mismatch is logged so the approximation stays observable.
func (r *Resolver) Resolve(ctx context.Context, records []string) (Key, error) {
	if len(records) == 0 {
		return Key{}, fmt.Errorf("no canonical records to partition")
	}

	key, err := FromRecord(records[0])
	if err != nil {
		return Key{}, err
	}

	for _, record := range records[1:] {
		other, err := FromRecord(record)
		if err != nil {
			continue
		}
		if other != key {
			r.logger.DebugwCtx(ctx, "Fanned-out record crosses partition boundary",
				"partition", key.TimestampSpec(),
				"record_partition", other.TimestampSpec(),
			)
		}
	}

	return key, nil
}

// Apply registers the partition with the catalog. Failures are
// logged and counted, never propagated: record delivery does not
// depend on the catalog.
func (r *Resolver) Apply(ctx context.Context, key Key) {
	if r.catalog == nil {
		return
	}

	if err := r.catalog.AddPartition(ctx, key); err != nil {
		metrics.PartitionApplyTotal.WithLabelValues("error").Inc()
		r.logger.WarnwCtx(ctx, "Failed to apply catalog partition",
			"error", err,
			"partition", key.TimestampSpec(),
		)
		return
	}

	metrics.PartitionApplyTotal.WithLabelValues("ok").Inc()
}
