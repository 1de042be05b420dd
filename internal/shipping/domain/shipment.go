package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusProcessing Status = "PROCESSING"

	DefaultCarrier = "UPS"

	deliveryWindow = 3 * 24 * time.Hour
)

var ErrNotFound = errors.New("shipment not found")

// Shipment tracks delivery of one order. An order never has more than one.
type Shipment struct {
	ID                string     `json:"id"`
	OrderID           int64      `json:"orderId"`
	TrackingNumber    string     `json:"trackingNumber"`
	Carrier           string     `json:"carrier"`
	Status            Status     `json:"status"`
	EstimatedDelivery time.Time  `json:"estimatedDelivery"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func NewShipment(orderID int64, carrier string, now time.Time) Shipment {
	if carrier == "" {
		carrier = DefaultCarrier
	}
	return Shipment{
		ID:                uuid.NewString(),
		OrderID:           orderID,
		TrackingNumber:    NewTrackingNumber(),
		Carrier:           carrier,
		Status:            StatusProcessing,
		EstimatedDelivery: now.Add(deliveryWindow),
		CreatedAt:         now,
	}
}

// NewTrackingNumber returns TRK- followed by eight upper-case hex digits.
func NewTrackingNumber() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}
