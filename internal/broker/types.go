package broker

import (
	"context"
)

// RawMessage is one payload pulled off the input topic, opaque to the
// broker layer: the normalizer owns decoding.
type RawMessage struct {
	Key   []byte
	Value []byte
}

type HandlerFunc func(ctx context.Context, msg RawMessage) error

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}
