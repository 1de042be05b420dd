package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-saga/internal/order/domain"
)

type recordingPublisher struct {
	topic, key, eventType string
	payload               []byte
	err                   error
}

func (r *recordingPublisher) Publish(_ context.Context, topic, key, eventType string, payload []byte) error {
	r.topic, r.key, r.eventType, r.payload = topic, key, eventType, payload
	return r.err
}

func TestPublishOrderCreated_KeyedByOrderID(t *testing.T) {
	rec := &recordingPublisher{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := domain.NewOrder(1, "widget", 3, 9.99, now)
	o.ID = 101

	require.NoError(t, NewEventPublisher(rec).PublishOrderCreated(context.Background(), domain.NewOrderEvent(o, now)))

	assert.Equal(t, "order-created", rec.topic)
	assert.Equal(t, "101", rec.key)
	assert.Equal(t, "OrderCreated", rec.eventType)

	ev, err := domain.DecodeOrderEvent(rec.payload)
	require.NoError(t, err)
	assert.EqualValues(t, 101, ev.OrderID)
	assert.Equal(t, 29.97, ev.TotalAmount)
	assert.Equal(t, "VALIDATED", ev.Status)
}

func TestPublishOrderCreated_PropagatesHandOffError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("writer closed")}
	err := NewEventPublisher(rec).PublishOrderCreated(context.Background(), domain.OrderEvent{OrderID: 1})
	assert.Error(t, err)
}
