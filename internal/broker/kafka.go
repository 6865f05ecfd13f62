package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"lakehose/internal/config"
	"lakehose/internal/constants"
	"lakehose/internal/logger"
	"lakehose/pkg/logging"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	err := p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   key,
			Value: value,
			Time:  time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	reader      *kafka.Reader
	logger      logger.Logger
	serviceName string
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// Consume reads the topic until ctx is canceled. Messages are
// committed after the handler returns; a handler error leaves the
// message uncommitted so the group redelivers it (processing is
// idempotent under at-least-once).
func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming",
					"topic", topic,
					"reason", "context canceled",
				)
				return nil
			}
			c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
				"error", err,
				"topic", topic,
			)
			time.Sleep(time.Second)
			continue
		}

		if err := handler(consumeCtx, RawMessage{Key: m.Key, Value: m.Value}); err != nil {
			c.logger.ErrorwCtx(consumeCtx, "Failed to process message",
				"error", err,
				"topic", topic,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.ErrorwCtx(consumeCtx, "Failed to commit offset",
				"error", err,
				"topic", topic,
			)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
