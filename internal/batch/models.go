package batch

import (
	"lakehose/internal/partition"
)

// InboundRecord is one item of the delivery stream's transformation
// request. Data is base64 on the wire; encoding/json handles the
// codec through the []byte type.
type InboundRecord struct {
	RecordID                    string `json:"recordId"`
	Data                        []byte `json:"data"`
	ApproximateArrivalTimestamp int64  `json:"approximateArrivalTimestamp,omitempty"`
}

type InboundEvent struct {
	Records []InboundRecord `json:"records"`
}

type RecordMetadata struct {
	PartitionKeys *partition.Key `json:"partitionKeys,omitempty"`
}

// OutboundRecord mirrors one inbound record. RecordID must match the
// inbound record exactly; any Result other than "Ok" routes the
// record to the stream's error output.
type OutboundRecord struct {
	RecordID string          `json:"recordId"`
	Result   string          `json:"result"`
	Data     []byte          `json:"data"`
	Metadata *RecordMetadata `json:"metadata,omitempty"`
}

type OutboundEvent struct {
	Records []OutboundRecord `json:"records"`
}
