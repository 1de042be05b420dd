package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TopicOrderCreated = "order-created"
	EventOrderCreated = "OrderCreated"
)

// OrderEvent is the snapshot announced once per created order.
type OrderEvent struct {
	OrderID     int64     `json:"orderId"`
	CustomerID  int64     `json:"customerId"`
	ProductID   string    `json:"productId"`
	Quantity    int       `json:"quantity"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOrderEvent(o Order, now time.Time) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Timestamp:   now,
	}
}

// DecodeOrderEvent parses a message payload. Payloads without a positive
// orderId cannot be deduplicated and are rejected.
func DecodeOrderEvent(b []byte) (OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if ev.OrderID <= 0 {
		return OrderEvent{}, fmt.Errorf("decode order event: missing orderId")
	}
	return ev, nil
}
