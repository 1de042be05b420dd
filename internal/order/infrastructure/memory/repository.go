// Package memory keeps orders in process memory. It backs local runs without
// PostgreSQL and the coordinator's tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmehra2102/order-saga/internal/order/domain"
)

type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.Order)}
}

func (r *Repository) Create(_ context.Context, o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.orders[o.ID] = o
	return o, nil
}

func (r *Repository) Get(_ context.Context, id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	return o, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) Update(_ context.Context, o domain.Order, expected domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkStatus(o.ID, expected); err != nil {
		return err
	}
	r.orders[o.ID] = o
	return nil
}

func (r *Repository) Delete(_ context.Context, id int64, expected domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkStatus(id, expected); err != nil {
		return err
	}
	delete(r.orders, id)
	return nil
}

// checkStatus must be called with mu held.
func (r *Repository) checkStatus(id int64, expected domain.OrderStatus) error {
	cur, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	if cur.Status != expected {
		return fmt.Errorf("%w: order %d is %s, expected %s", domain.ErrStatusChanged, id, cur.Status, expected)
	}
	return nil
}

// Put stores o under its own id, for seeding orders in a given state.
func (r *Repository) Put(o domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID > r.nextID {
		r.nextID = o.ID
	}
	r.orders[o.ID] = o
}
