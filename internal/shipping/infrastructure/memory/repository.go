package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/order-saga/internal/shipping/domain"
)

type Repository struct {
	mu      sync.Mutex
	byOrder map[int64]domain.Shipment
}

func NewRepository() *Repository {
	return &Repository{byOrder: make(map[int64]domain.Shipment)}
}

func (r *Repository) FindByOrderID(_ context.Context, orderID int64) (domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byOrder[orderID]
	if !ok {
		return domain.Shipment{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *Repository) Create(_ context.Context, s domain.Shipment) (domain.Shipment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byOrder[s.OrderID]; ok {
		return existing, false, nil
	}
	r.byOrder[s.OrderID] = s
	return s, true, nil
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOrder)
}
