package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/internal/payment/application"
	"github.com/dmehra2102/order-saga/internal/payment/domain"
	"github.com/dmehra2102/order-saga/internal/payment/infrastructure/memory"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func event(orderID int64, total float64) orderdomain.OrderEvent {
	return orderdomain.OrderEvent{
		OrderID:     orderID,
		CustomerID:  1,
		ProductID:   "widget",
		Quantity:    3,
		TotalAmount: total,
		Status:      "VALIDATED",
		Timestamp:   time.Now().UTC(),
	}
}

func TestHandleOrderCreated_CapturesPayment(t *testing.T) {
	repo := memory.NewRepository()
	svc := application.NewService(discard, repo, "", nil)

	require.NoError(t, svc.HandleOrderCreated(context.Background(), event(101, 29.97)))

	p, err := repo.FindByOrderID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 29.97, p.Amount)
	assert.Equal(t, domain.StatusCompleted, p.Status)
	assert.Equal(t, domain.MethodCreditCard, p.Method)
	assert.True(t, strings.HasPrefix(p.TransactionID, "TXN-"))
}

func TestHandleOrderCreated_RedeliveryIsDiscarded(t *testing.T) {
	repo := memory.NewRepository()
	svc := application.NewService(discard, repo, "PAYPAL", nil)
	ctx := context.Background()

	require.NoError(t, svc.HandleOrderCreated(ctx, event(7, 10)))
	first, err := repo.FindByOrderID(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, svc.HandleOrderCreated(ctx, event(7, 10)))

	again, err := repo.FindByOrderID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, first.TransactionID, again.TransactionID)
	assert.Equal(t, "PAYPAL", again.Method)
}

func TestHandleOrderCreated_ConcurrentDuplicatesWriteOnce(t *testing.T) {
	repo := memory.NewRepository()
	svc := application.NewService(discard, repo, "", nil)

	var g errgroup.Group
	for range 20 {
		g.Go(func() error { return svc.HandleOrderCreated(context.Background(), event(55, 5)) })
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, repo.Len())
}

type failingRepo struct {
	findErr, createErr error
}

func (f failingRepo) FindByOrderID(context.Context, int64) (domain.Payment, error) {
	if f.findErr != nil {
		return domain.Payment{}, f.findErr
	}
	return domain.Payment{}, domain.ErrNotFound
}

func (f failingRepo) Create(context.Context, domain.Payment) (domain.Payment, bool, error) {
	return domain.Payment{}, false, f.createErr
}

func TestHandleOrderCreated_StoreErrors(t *testing.T) {
	down := errors.New("connection refused")

	svc := application.NewService(discard, failingRepo{findErr: down}, "", nil)
	assert.ErrorIs(t, svc.HandleOrderCreated(context.Background(), event(1, 1)), down)

	svc = application.NewService(discard, failingRepo{createErr: down}, "", nil)
	assert.ErrorIs(t, svc.HandleOrderCreated(context.Background(), event(1, 1)), down)
}
