package messaging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/order-saga/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

type HandlerFunc func(ctx context.Context, msg kafka.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg kafka.Message) error { return f(ctx, msg) }

// NewReader joins group on topic. Every group receives every message;
// members of one group split the partitions between them.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

type Consumer struct {
	log     *slog.Logger
	name    string
	reader  Reader
	handler Handler
	tracer  trace.Tracer
}

func NewConsumer(log *slog.Logger, name string, reader Reader, handler Handler) *Consumer {
	return &Consumer{
		log:     log,
		name:    name,
		reader:  reader,
		handler: handler,
		tracer:  otel.Tracer(name),
	}
}

// Run processes messages until ctx ends. A handler error is logged and the
// message is committed anyway: there is no retry and no dead-letter topic.
// An uncommitted message is redelivered only after a restart, so handlers
// must be idempotent.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("commit failed", "consumer", c.name, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume "+msg.Topic, trace.WithAttributes(
		attribute.String("messaging.kafka.message.key", string(msg.Key)),
		attribute.Int("messaging.kafka.partition", msg.Partition),
		attribute.Int64("messaging.kafka.offset", msg.Offset),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, "panic")
			c.log.ErrorContext(msgCtx, "handler panicked", "consumer", c.name, "key", string(msg.Key), "panic", r)
		}
	}()

	if err := c.handler.Handle(msgCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.ErrorContext(msgCtx, "message dropped", "consumer", c.name, "key", string(msg.Key),
			"partition", msg.Partition, "offset", msg.Offset, "err", err)
	}
}

// RunGroup runs workers consumers in one group until ctx ends. Kafka assigns
// each member its own partitions, so per-key order holds across workers.
func RunGroup(ctx context.Context, log *slog.Logger, brokers []string, topic, group string, workers int, handler Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range workers {
		c := NewConsumer(log.With("worker", i), group, NewReader(brokers, topic, group), handler)
		g.Go(func() error { return c.Run(ctx) })
	}
	log.Info("consumers started", "topic", topic, "group", group, "workers", workers)
	return g.Wait()
}
