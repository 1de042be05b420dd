package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Migrations = migrate.Source{FS: migrations, Dir: "migrations", Table: "order_schema_version"}

const orderColumns = `id, customer_id, product_id, quantity, total_amount, status, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (customer_id, product_id, quantity, total_amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		o.CustomerID, o.ProductID, o.Quantity, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Update writes o only while the stored status is still expected.
func (r *Repository) Update(ctx context.Context, o domain.Order, expected domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET customer_id=$2, product_id=$3, quantity=$4, total_amount=$5, status=$6, updated_at=$7
		WHERE id=$1 AND status=$8`,
		o.ID, o.CustomerID, o.ProductID, o.Quantity, o.TotalAmount, string(o.Status), o.UpdatedAt, string(expected),
	)
	if err != nil {
		return fmt.Errorf("update order %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.missed(ctx, o.ID, expected)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64, expected domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND status=$2`, id, string(expected))
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return r.missed(ctx, id, expected)
	}
	return nil
}

// missed tells a vanished row from one whose status moved under a conditional write.
func (r *Repository) missed(ctx context.Context, id int64, expected domain.OrderStatus) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("get order %d: %w", id, err)
	}
	return fmt.Errorf("%w: order %d is %s, expected %s", domain.ErrStatusChanged, id, status, expected)
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.TotalAmount, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}
