package application

import (
	"context"

	"github.com/dmehra2102/order-saga/internal/payment/domain"
)

type PaymentRepository interface {
	// FindByOrderID returns domain.ErrNotFound when the order has no payment.
	FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error)
	// Create stores p unless the order already has a payment, in which case
	// created is false and nothing is written.
	Create(ctx context.Context, p domain.Payment) (stored domain.Payment, created bool, err error)
}
