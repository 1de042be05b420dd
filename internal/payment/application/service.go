package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/internal/payment/domain"
	"github.com/dmehra2102/order-saga/pkg/metrics"
)

const consumerName = "payment"

type Service struct {
	log     *slog.Logger
	repo    PaymentRepository
	method  string
	metrics *metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(log *slog.Logger, repo PaymentRepository, method string, rec *metrics.Recorder) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		method:  method,
		metrics: rec,
		tracer:  otel.Tracer("payment-service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleOrderCreated captures payment for the order once. Redelivered events
// for an order that already has a payment are discarded.
func (s *Service) HandleOrderCreated(ctx context.Context, ev orderdomain.OrderEvent) error {
	ctx, span := s.tracer.Start(ctx, "ProcessPayment", trace.WithAttributes(attribute.Int64("order_id", ev.OrderID)))
	defer span.End()

	existing, err := s.repo.FindByOrderID(ctx, ev.OrderID)
	switch {
	case err == nil:
		s.duplicate(ctx, ev.OrderID, existing.ID)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeFailed)
		return fmt.Errorf("look up payment for order %d: %w", ev.OrderID, err)
	}

	p, created, err := s.repo.Create(ctx, domain.NewPayment(ev.OrderID, ev.TotalAmount, s.method, s.now()))
	if err != nil {
		s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeFailed)
		return fmt.Errorf("save payment for order %d: %w", ev.OrderID, err)
	}
	if !created {
		s.duplicate(ctx, ev.OrderID, p.ID)
		return nil
	}

	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeCreated)
	s.log.InfoContext(ctx, "payment processed", "order_id", ev.OrderID, "payment_id", p.ID,
		"amount", p.Amount, "transaction_id", p.TransactionID)
	return nil
}

func (s *Service) duplicate(ctx context.Context, orderID, paymentID int64) {
	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeDuplicate)
	s.log.InfoContext(ctx, "payment already exists, event discarded", "order_id", orderID, "payment_id", paymentID)
}
