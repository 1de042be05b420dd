package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-saga/internal/notification/domain"
	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/pkg/idempotency"
	"github.com/dmehra2102/order-saga/pkg/metrics"
)

const consumerName = "notification"

// Dedupe selects how redelivered events are recognised.
type Dedupe string

const (
	// DedupeOff writes one notification per delivery.
	DedupeOff Dedupe = "off"
	// DedupeStore skips orders that already have a notification of the type.
	DedupeStore Dedupe = "store"
	// DedupeRedis skips orders whose shared claim is marked done and falls
	// back to the store check otherwise.
	DedupeRedis Dedupe = "redis"
)

type Service struct {
	log     *slog.Logger
	repo    NotificationRepository
	mode    Dedupe
	claims  Claims
	metrics *metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService returns an error when mode is redis and claims is nil.
func NewService(log *slog.Logger, repo NotificationRepository, mode Dedupe, claims Claims, rec *metrics.Recorder) (*Service, error) {
	switch mode {
	case DedupeOff, DedupeStore:
	case DedupeRedis:
		if claims == nil {
			return nil, fmt.Errorf("notification: dedupe mode %q needs a claim store", mode)
		}
	default:
		return nil, fmt.Errorf("notification: unknown dedupe mode %q", mode)
	}
	return &Service{
		log:     log,
		repo:    repo,
		mode:    mode,
		claims:  claims,
		metrics: rec,
		tracer:  otel.Tracer("notification-service"),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) HandleOrderCreated(ctx context.Context, ev orderdomain.OrderEvent) error {
	ctx, span := s.tracer.Start(ctx, "SendNotification", trace.WithAttributes(
		attribute.Int64("order_id", ev.OrderID),
		attribute.String("dedupe", string(s.mode)),
	))
	defer span.End()

	n := domain.NewOrderCreated(ev.OrderID, ev.CustomerID, ev.TotalAmount, s.now())

	switch s.mode {
	case DedupeOff:
		stored, err := s.repo.Create(ctx, n)
		if err != nil {
			return s.failed(ctx, fmt.Errorf("save notification for order %d: %w", ev.OrderID, err))
		}
		s.sent(ctx, stored)
		return nil
	case DedupeRedis:
		return s.handleClaimed(ctx, n)
	}
	return s.createOnce(ctx, n)
}

// handleClaimed consults the shared claim first. Only a claim marked done
// short-circuits; a pending one may belong to a writer that died before
// committing, so the store decides.
func (s *Service) handleClaimed(ctx context.Context, n domain.Notification) error {
	key := idempotency.Key(consumerName, string(n.Type), n.OrderID)
	claimed, err := s.claims.Claim(ctx, key)
	if err != nil {
		return s.failed(ctx, err)
	}
	if !claimed {
		done, err := s.claims.Done(ctx, key)
		if err != nil {
			return s.failed(ctx, err)
		}
		if done {
			s.duplicate(ctx, n.OrderID)
			return nil
		}
		s.log.WarnContext(ctx, "claim held but not completed, checking store", "order_id", n.OrderID)
	}

	if err := s.createOnce(ctx, n); err != nil {
		if claimed {
			if relErr := s.claims.Release(ctx, key); relErr != nil {
				s.log.ErrorContext(ctx, "claim release failed", "order_id", n.OrderID, "err", relErr)
			}
		}
		return err
	}
	if err := s.claims.MarkDone(ctx, key); err != nil {
		s.log.ErrorContext(ctx, "claim completion failed", "order_id", n.OrderID, "err", err)
	}
	return nil
}

func (s *Service) createOnce(ctx context.Context, n domain.Notification) error {
	stored, created, err := s.repo.CreateIfAbsent(ctx, n)
	if err != nil {
		return s.failed(ctx, fmt.Errorf("save notification for order %d: %w", n.OrderID, err))
	}
	if !created {
		s.duplicate(ctx, n.OrderID)
		return nil
	}
	s.sent(ctx, stored)
	return nil
}

func (s *Service) sent(ctx context.Context, n domain.Notification) {
	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeCreated)
	s.log.InfoContext(ctx, "notification sent", "notification_id", n.ID, "order_id", n.OrderID,
		"customer_id", n.CustomerID, "channel", n.Channel)
}

func (s *Service) failed(ctx context.Context, err error) error {
	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeFailed)
	return err
}

func (s *Service) duplicate(ctx context.Context, orderID int64) {
	s.metrics.EventHandled(ctx, consumerName, metrics.OutcomeDuplicate)
	s.log.InfoContext(ctx, "notification already sent, event discarded", "order_id", orderID)
}
