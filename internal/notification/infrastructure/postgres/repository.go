package postgres

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-saga/internal/notification/domain"
	"github.com/dmehra2102/order-saga/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "notification_schema_version"}

// Repository has no uniqueness constraint on order_id: plain Create allows
// duplicates, CreateIfAbsent does not.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return insert(ctx, r.pool, n)
}

// CreateIfAbsent holds a transaction-scoped advisory lock keyed by order id,
// so the existence check and the insert are atomic across instances.
func (r *Repository) CreateIfAbsent(ctx context.Context, n domain.Notification) (domain.Notification, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Notification{}, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, n.OrderID); err != nil {
		return domain.Notification{}, false, fmt.Errorf("lock order %d: %w", n.OrderID, err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE order_id=$1 AND type=$2)`,
		n.OrderID, string(n.Type),
	).Scan(&exists)
	if err != nil {
		return domain.Notification{}, false, err
	}
	if exists {
		return domain.Notification{}, false, nil
	}

	stored, err := insert(ctx, tx, n)
	if err != nil {
		return domain.Notification{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Notification{}, false, err
	}
	return stored, true, nil
}

func insert(ctx context.Context, q querier, n domain.Notification) (domain.Notification, error) {
	err := q.QueryRow(ctx, `
		INSERT INTO notifications (order_id, customer_id, recipient, message, type, status, channel, created_at, sent_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		n.OrderID, n.CustomerID, n.Recipient, n.Message, string(n.Type), string(n.Status), string(n.Channel), n.CreatedAt, n.SentAt,
	).Scan(&n.ID)
	if err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}
