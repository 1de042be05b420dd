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
	"github.com/dmehra2102/order-saga/internal/shipping/domain"
	"github.com/dmehra2102/order-saga/pkg/metrics"
)

const consumerName = "shipping"

type Service struct {
	log     *slog.Logger
	repo    ShipmentRepository
	carrier string
	metrics *metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(log *slog.Logger, repo ShipmentRepository, carrier string, rec *metrics.Recorder) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		carrier: carrier,
		metrics: rec,
		tracer:  otel.Tracer("shipping-service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleOrderCreated opens a shipment for the order unless one exists.
func (s *Service) HandleOrderCreated(ctx context.Context, ev orderdomain.OrderEvent) error {
	ctx, span := s.tracer.Start(ctx, "CreateShipment", trace.WithAttributes(attribute.Int64("order_id", ev.OrderID)))
	defer span.End()

	existing, err := s.repo.FindByOrderID(ctx, ev.OrderID)
	if err == nil {
		s.duplicate(ctx, existing)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeFailed)
		return fmt.Errorf("look up shipment for order %d: %w", ev.OrderID, err)
	}

	sh, created, err := s.repo.Create(ctx, domain.NewShipment(ev.OrderID, s.carrier, s.now()))
	if err != nil {
		s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeFailed)
		return fmt.Errorf("save shipment for order %d: %w", ev.OrderID, err)
	}
	if !created {
		s.duplicate(ctx, sh)
		return nil
	}

	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeCreated)
	s.log.InfoContext(ctx, "shipment created", "order_id", ev.OrderID, "shipment_id", sh.ID,
		"tracking_number", sh.TrackingNumber, "carrier", sh.Carrier)
	return nil
}

func (s *Service) duplicate(ctx context.Context, sh domain.Shipment) {
	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeDuplicate)
	s.log.InfoContext(ctx, "shipment already exists, event discarded", "order_id", sh.OrderID, "shipment_id", sh.ID)
}
