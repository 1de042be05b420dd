package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/order-saga/internal/notification/domain"
)

type Repository struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Notification
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.items = append(r.items, n)
	return n, nil
}

func (r *Repository) CreateIfAbsent(_ context.Context, n domain.Notification) (domain.Notification, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.OrderID == n.OrderID && existing.Type == n.Type {
			return existing, false, nil
		}
	}
	r.nextID++
	n.ID = r.nextID
	r.items = append(r.items, n)
	return n, true, nil
}

// ForOrder returns the notifications written for orderID in insertion order.
func (r *Repository) ForOrder(orderID int64) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.items {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out
}
