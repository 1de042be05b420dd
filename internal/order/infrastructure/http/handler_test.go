package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-saga/internal/order/application"
	"github.com/dmehra2102/order-saga/internal/order/domain"
	orderkafka "github.com/dmehra2102/order-saga/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/order-saga/internal/order/infrastructure/memory"
)

type customers map[int64]bool

func (c customers) CustomerExists(_ context.Context, id int64) bool { return c[id] }

type inventory struct{}

func (inventory) CheckInventory(_ context.Context, productID string, quantity int) application.ProductInfo {
	if productID != "widget" || quantity > 10 {
		return application.ProductInfo{}
	}
	return application.ProductInfo{Available: true, UnitPrice: 9.99}
}

type brokenRepo struct{ *memory.Repository }

func (brokenRepo) List(context.Context) ([]domain.Order, error) {
	return nil, errors.New("connection reset")
}

func newServer(t *testing.T, repo application.OrderRepository) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, repo, customers{1: true, 2: true}, inventory{}, orderkafka.NoopPublisher{}, nil)
	srv := httptest.NewServer(NewHandler(log, svc).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func rels(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["_links"].([]any)
	require.True(t, ok, "missing _links")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, l.(map[string]any)["rel"].(string))
	}
	return out
}

func TestCreateOrder_Created(t *testing.T) {
	srv := newServer(t, memory.NewRepository())

	resp, body := do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":3}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/orders/1", resp.Header.Get("Location"))
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "VALIDATED", body["status"])
	assert.Equal(t, 29.97, body["totalAmount"])
	assert.Equal(t, []string{"self", "cancel", "customer", "product"}, rels(t, body))
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	srv := newServer(t, memory.NewRepository())

	cases := map[string]string{
		"unknown customer": `{"customerId":99,"productId":"widget","quantity":1}`,
		"no stock":         `{"customerId":1,"productId":"widget","quantity":11}`,
		"zero quantity":    `{"customerId":1,"productId":"widget","quantity":0}`,
		"missing product":  `{"customerId":1,"quantity":1}`,
		"malformed":        `{"customerId":`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/api/orders", payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetOrder(t *testing.T) {
	srv := newServer(t, memory.NewRepository())
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/orders/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "widget", body["productId"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/orders/42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListOrders(t *testing.T) {
	srv := newServer(t, memory.NewRepository())
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":2,"productId":"widget","quantity":2}`)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["orders"], 2)
}

func TestListOrders_StoreFailureIs500(t *testing.T) {
	srv := newServer(t, brokenRepo{memory.NewRepository()})

	resp, body := do(t, http.MethodGet, srv.URL+"/api/orders", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", body["error"])
}

func TestUpdateOrder(t *testing.T) {
	srv := newServer(t, memory.NewRepository())
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/orders/1", `{"customerId":2,"productId":"widget","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["customerId"])
	assert.Equal(t, 19.98, body["totalAmount"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/orders/7", `{"customerId":1,"productId":"widget","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrder_RejectedAfterPayment(t *testing.T) {
	repo := memory.NewRepository()
	now := time.Now().UTC()
	o := domain.NewOrder(1, "widget", 1, 9.99, now)
	o.ID = 5
	o.Status = domain.StatusPaid
	repo.Put(o)
	srv := newServer(t, repo)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/orders/5", `{"customerId":1,"productId":"widget","quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "PAID")

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/orders/5", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteOrder(t *testing.T) {
	srv := newServer(t, memory.NewRepository())
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)

	resp, _ := do(t, http.MethodDelete, srv.URL+"/api/orders/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/orders/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelAndStatus(t *testing.T) {
	srv := newServer(t, memory.NewRepository())
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)
	do(t, http.MethodPost, srv.URL+"/api/orders", `{"customerId":1,"productId":"widget","quantity":1}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/orders/1/cancel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CANCELLED", body["status"])
	assert.Equal(t, []string{"self", "customer", "product"}, rels(t, body))

	resp, body = do(t, http.MethodPost, srv.URL+"/api/orders/2/status", `{"status":"PAYMENT_PROCESSING"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"self", "payment-status", "customer", "product"}, rels(t, body))

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/orders/2/status", `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/orders/2/status", `{"status":"LOST"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
