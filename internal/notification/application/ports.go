package application

import (
	"context"

	"github.com/dmehra2102/order-saga/internal/notification/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	// CreateIfAbsent writes n unless the order already has a notification of
	// n's type. Concurrent callers for one order are serialised by the store.
	CreateIfAbsent(ctx context.Context, n domain.Notification) (stored domain.Notification, created bool, err error)
}

// Claims guards against concurrent duplicates across instances.
type Claims interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	MarkDone(ctx context.Context, key string) error
	Done(ctx context.Context, key string) (bool, error)
}
