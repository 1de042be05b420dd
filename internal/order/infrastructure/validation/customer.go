package validation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"
)

type CustomerClient struct {
	client
}

func NewCustomerClient(log *slog.Logger, baseURL string, timeout time.Duration, pool *Pool) *CustomerClient {
	return &CustomerClient{client: newClient(log, baseURL, timeout, pool)}
}

func (c *CustomerClient) CustomerExists(ctx context.Context, customerID int64) bool {
	err := c.fetch(ctx, "/api/customers/"+strconv.FormatInt(customerID, 10), nil)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound):
		c.log.WarnContext(ctx, "customer not found", "customer_id", customerID)
	default:
		c.log.ErrorContext(ctx, "customer check failed", "customer_id", customerID, "err", err)
	}
	return false
}
