// Package messaging is the Kafka side of the saga: an asynchronous,
// key-ordered publisher and a consumer-group reader loop.
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/order-saga/pkg/metrics"
	"github.com/dmehra2102/order-saga/pkg/tracing"
)

const HeaderEventType = "event_type"

var ErrEmptyKey = errors.New("messaging: empty partition key")

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns a fire-and-forget writer: WriteMessages only enqueues,
// delivery failures surface in the completion callback. Messages with the
// same key land on the same partition.
func NewWriter(log *slog.Logger, brokers []string, rec *metrics.Recorder) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  true,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err == nil {
				return
			}
			for _, m := range msgs {
				log.Error("message delivery failed", "topic", m.Topic, "key", string(m.Key), "err", err)
			}
			if len(msgs) > 0 {
				rec.PublishFailed(context.Background(), msgs[0].Topic, len(msgs))
			}
		},
	}
}

type Publisher struct {
	log      *slog.Logger
	producer Producer
	metrics  *metrics.Recorder
}

func NewPublisher(log *slog.Logger, producer Producer, rec *metrics.Recorder) *Publisher {
	return &Publisher{log: log, producer: producer, metrics: rec}
}

// Publish hands one message to the producer. With an async writer the
// returned error only covers the hand-off, never broker delivery.
func (p *Publisher) Publish(ctx context.Context, topic, key, eventType string, payload []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte(eventType)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
		Time:    time.Now().UTC(),
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishFailed(ctx, topic, 1)
		return err
	}
	p.metrics.EventPublished(ctx, topic)
	p.log.DebugContext(ctx, "message enqueued", "topic", topic, "key", key, "type", eventType)
	return nil
}
