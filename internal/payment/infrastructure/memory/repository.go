package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/order-saga/internal/payment/domain"
)

type Repository struct {
	mu      sync.Mutex
	nextID  int64
	byOrder map[int64]domain.Payment
}

func NewRepository() *Repository {
	return &Repository{byOrder: make(map[int64]domain.Payment)}
}

func (r *Repository) FindByOrderID(_ context.Context, orderID int64) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOrder[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *Repository) Create(_ context.Context, p domain.Payment) (domain.Payment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byOrder[p.OrderID]; ok {
		return existing, false, nil
	}
	r.nextID++
	p.ID = r.nextID
	r.byOrder[p.OrderID] = p
	return p, true, nil
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOrder)
}
