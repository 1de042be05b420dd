package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-saga/internal/payment/domain"
	"github.com/dmehra2102/order-saga/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "payment_schema_version"}

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error) {
	var p domain.Payment
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, amount, payment_method, status, transaction_id, created_at
		FROM payments WHERE order_id=$1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &status, &p.TransactionID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}
	p.Status = domain.Status(status)
	return p, nil
}

// Create relies on the unique order_id index: a concurrent insert for the
// same order loses quietly and the existing row is returned.
func (r *Repository) Create(ctx context.Context, p domain.Payment) (domain.Payment, bool, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, payment_method, status, transaction_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING id`,
		p.OrderID, p.Amount, p.Method, string(p.Status), p.TransactionID, p.CreatedAt,
	).Scan(&p.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.FindByOrderID(ctx, p.OrderID)
		if err != nil {
			return domain.Payment{}, false, fmt.Errorf("read conflicting payment: %w", err)
		}
		r.log.DebugContext(ctx, "payment insert lost to existing row", "order_id", p.OrderID)
		return existing, false, nil
	}
	if err != nil {
		return domain.Payment{}, false, err
	}
	return p, true, nil
}
