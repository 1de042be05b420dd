package application

import (
	"context"

	"github.com/dmehra2102/order-saga/internal/shipping/domain"
)

type ShipmentRepository interface {
	// FindByOrderID returns domain.ErrNotFound when the order has no shipment.
	FindByOrderID(ctx context.Context, orderID int64) (domain.Shipment, error)
	// Create stores s unless the order already has a shipment, in which case
	// the existing one is returned with created false.
	Create(ctx context.Context, s domain.Shipment) (stored domain.Shipment, created bool, err error)
}
