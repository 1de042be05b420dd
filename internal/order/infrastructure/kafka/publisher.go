package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmehra2102/order-saga/internal/order/domain"
)

// Publisher is satisfied by messaging.Publisher.
type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload []byte) error
}

// EventPublisher puts order events on the order-created topic, keyed by
// order id so every event for one order stays on one partition.
type EventPublisher struct {
	pub Publisher
}

func NewEventPublisher(pub Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) PublishOrderCreated(ctx context.Context, ev domain.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	key := strconv.FormatInt(ev.OrderID, 10)
	return p.pub.Publish(ctx, domain.TopicOrderCreated, key, domain.EventOrderCreated, payload)
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, domain.OrderEvent) error { return nil }
