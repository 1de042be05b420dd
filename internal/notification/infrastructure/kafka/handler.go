package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/order-saga/internal/notification/application"
	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
)

const GroupID = "notification-service-group"

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	ev, err := orderdomain.DecodeOrderEvent(msg.Value)
	if err != nil {
		return err
	}
	return h.svc.HandleOrderCreated(ctx, ev)
}
