package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	customers CustomerClient
	inventory InventoryClient
	publisher EventPublisher
	metrics   *metrics.Recorder
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(log *slog.Logger, repo OrderRepository, customers CustomerClient, inventory InventoryClient, publisher EventPublisher, rec *metrics.Recorder) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		customers: customers,
		inventory: inventory,
		publisher: publisher,
		metrics:   rec,
		tracer:    otel.Tracer("order-coordinator"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the customer and stock, persists a VALIDATED order and
// announces it. Nothing is persisted when a check fails; a failed announcement
// never fails the call.
func (s *Service) CreateOrder(ctx context.Context, customerID int64, productID string, quantity int) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CreateOrder", trace.WithAttributes(
		attribute.Int64("customer_id", customerID),
		attribute.String("product_id", productID),
	))
	defer span.End()

	if quantity <= 0 {
		s.metrics.OrderRejected(ctx, "quantity")
		return domain.Order{}, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrValidationFailed, quantity)
	}

	if !s.customers.CustomerExists(ctx, customerID) {
		s.metrics.OrderRejected(ctx, "customer")
		return domain.Order{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, customerID)
	}
	s.log.InfoContext(ctx, "customer validated", "customer_id", customerID)

	info := s.inventory.CheckInventory(ctx, productID, quantity)
	if !info.Available {
		s.metrics.OrderRejected(ctx, "inventory")
		return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrInsufficientInventory, productID)
	}
	s.log.InfoContext(ctx, "inventory validated", "product_id", productID, "unit_price", info.UnitPrice)

	o, err := s.repo.Create(ctx, domain.NewOrder(customerID, productID, quantity, info.UnitPrice, s.now()))
	if err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	s.metrics.OrderCreated(ctx)
	s.log.InfoContext(ctx, "order created", "order_id", o.ID, "total_amount", o.TotalAmount)

	s.announce(ctx, o)
	return o, nil
}

func (s *Service) announce(ctx context.Context, o domain.Order) {
	if err := s.publisher.PublishOrderCreated(ctx, domain.NewOrderEvent(o, s.now())); err != nil {
		s.log.ErrorContext(ctx, "order event publish failed", "order_id", o.ID, "err", err)
		return
	}
	s.log.InfoContext(ctx, "order event handed off", "order_id", o.ID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// UpdateOrder re-validates only the fields that changed. The total is
// recomputed when product or quantity changes and kept otherwise.
func (s *Service) UpdateOrder(ctx context.Context, id, customerID int64, productID string, quantity int) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "UpdateOrder", trace.WithAttributes(attribute.Int64("order_id", id)))
	defer span.End()

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Modifiable() {
		return domain.Order{}, fmt.Errorf("%w: cannot update order in %s status", domain.ErrInvalidState, o.Status)
	}
	if quantity <= 0 {
		return domain.Order{}, fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrValidationFailed, quantity)
	}

	if o.CustomerID != customerID {
		if !s.customers.CustomerExists(ctx, customerID) {
			return domain.Order{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, customerID)
		}
		o.CustomerID = customerID
	}

	if o.ProductID != productID || o.Quantity != quantity {
		info := s.inventory.CheckInventory(ctx, productID, quantity)
		if !info.Available {
			return domain.Order{}, fmt.Errorf("%w: product %s", domain.ErrInsufficientInventory, productID)
		}
		o.ProductID = productID
		o.Quantity = quantity
		o.TotalAmount = domain.Total(info.UnitPrice, quantity)
	}

	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o, o.Status); err != nil {
		return domain.Order{}, fmt.Errorf("update order %d: %w", id, err)
	}
	s.log.InfoContext(ctx, "order updated", "order_id", id)
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !o.Deletable() {
		return fmt.Errorf("%w: cannot delete order in %s status", domain.ErrInvalidState, o.Status)
	}
	if err := s.repo.Delete(ctx, id, o.Status); err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.log.InfoContext(ctx, "order deleted", "order_id", id)
	return nil
}

func (s *Service) CancelOrder(ctx context.Context, id int64) (domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Modifiable() {
		return domain.Order{}, fmt.Errorf("%w: cannot cancel order in %s status", domain.ErrInvalidState, o.Status)
	}
	return s.transition(ctx, o, domain.StatusCancelled)
}

// TransitionStatus moves an order along one defined workflow edge.
func (s *Service) TransitionStatus(ctx context.Context, id int64, to domain.OrderStatus) (domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return s.transition(ctx, o, to)
}

func (s *Service) transition(ctx context.Context, o domain.Order, to domain.OrderStatus) (domain.Order, error) {
	from := o.Status
	if err := o.TransitionTo(to, s.now()); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.Update(ctx, o, from); err != nil {
		return domain.Order{}, fmt.Errorf("update order %d: %w", o.ID, err)
	}
	s.log.InfoContext(ctx, "order status changed", "order_id", o.ID, "from", from, "to", to)
	return o, nil
}

// IsClientError reports whether err should be surfaced to the caller as a
// request problem rather than a server fault.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrValidationFailed)
}
