package validation

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/dmehra2102/order-saga/internal/order/application"
)

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type InventoryClient struct {
	client
}

func NewInventoryClient(log *slog.Logger, baseURL string, timeout time.Duration, pool *Pool) *InventoryClient {
	return &InventoryClient{client: newClient(log, baseURL, timeout, pool)}
}

func (c *InventoryClient) CheckInventory(ctx context.Context, productID string, quantity int) application.ProductInfo {
	var p productResponse
	err := c.fetch(ctx, "/api/inventory/"+url.PathEscape(productID), &p)
	switch {
	case errors.Is(err, ErrNotFound):
		c.log.WarnContext(ctx, "product not found", "product_id", productID)
		return application.ProductInfo{}
	case err != nil:
		c.log.ErrorContext(ctx, "inventory check failed", "product_id", productID, "err", err)
		return application.ProductInfo{}
	}

	available := p.Quantity >= quantity
	c.log.InfoContext(ctx, "inventory checked",
		"product_id", productID, "available", available, "quantity", p.Quantity, "price", p.Price)
	return application.ProductInfo{Available: available, UnitPrice: p.Price}
}
