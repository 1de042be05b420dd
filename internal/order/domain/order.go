package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending           OrderStatus = "PENDING"
	StatusValidated         OrderStatus = "VALIDATED"
	StatusPaymentProcessing OrderStatus = "PAYMENT_PROCESSING"
	StatusPaid              OrderStatus = "PAID"
	StatusShipping          OrderStatus = "SHIPPING"
	StatusShipped           OrderStatus = "SHIPPED"
	StatusDelivered         OrderStatus = "DELIVERED"
	StatusCancelled         OrderStatus = "CANCELLED"
	StatusFailed            OrderStatus = "FAILED"
)

// transitions lists every edge the order workflow may take.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:           {StatusValidated, StatusCancelled, StatusFailed},
	StatusValidated:         {StatusPaymentProcessing, StatusCancelled, StatusFailed},
	StatusPaymentProcessing: {StatusPaid, StatusFailed},
	StatusPaid:              {StatusShipping},
	StatusShipping:          {StatusShipped},
	StatusShipped:           {StatusDelivered},
}

func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	switch st {
	case StatusPending, StatusValidated, StatusPaymentProcessing, StatusPaid,
		StatusShipping, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidationFailed, s)
}

// CanTransition reports whether from -> to is a defined edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no edge leaves s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

type Order struct {
	ID          int64       `json:"id"`
	CustomerID  int64       `json:"customerId"`
	ProductID   string      `json:"productId"`
	Quantity    int         `json:"quantity"`
	TotalAmount float64     `json:"totalAmount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// NewOrder builds a validated order; the id is assigned by the store.
func NewOrder(customerID int64, productID string, quantity int, unitPrice float64, now time.Time) Order {
	return Order{
		CustomerID:  customerID,
		ProductID:   productID,
		Quantity:    quantity,
		TotalAmount: Total(unitPrice, quantity),
		Status:      StatusValidated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Total returns unitPrice * quantity rounded to cents.
func Total(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// Modifiable reports whether the order may still be updated or cancelled.
func (o Order) Modifiable() bool {
	return o.Status == StatusPending || o.Status == StatusValidated
}

// Deletable is false once money has moved or goods are on their way.
func (o Order) Deletable() bool {
	switch o.Status {
	case StatusPaymentProcessing, StatusPaid, StatusShipping, StatusShipped, StatusDelivered:
		return false
	}
	return true
}

func (o *Order) TransitionTo(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: cannot move order %d from %s to %s", ErrInvalidState, o.ID, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}
