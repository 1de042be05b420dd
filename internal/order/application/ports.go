package application

import (
	"context"

	"github.com/dmehra2102/order-saga/internal/order/domain"
)

// OrderRepository writes are conditional: Update and Delete apply only while
// the stored status still equals expected, and return domain.ErrStatusChanged
// otherwise.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, o domain.Order, expected domain.OrderStatus) error
	Delete(ctx context.Context, id int64, expected domain.OrderStatus) error
}

// CustomerClient never fails: any upstream problem reads as "does not exist".
type CustomerClient interface {
	CustomerExists(ctx context.Context, customerID int64) bool
}

type ProductInfo struct {
	Available bool
	UnitPrice float64
}

// InventoryClient never fails: any upstream problem reads as unavailable.
type InventoryClient interface {
	CheckInventory(ctx context.Context, productID string, quantity int) ProductInfo
}

// EventPublisher hands an event to the message channel without waiting for
// the broker.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, ev domain.OrderEvent) error
}
