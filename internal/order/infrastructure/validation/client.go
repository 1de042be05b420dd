// Package validation talks to the customer and inventory services. Every
// failure mode collapses into a negative answer: an unreachable service is
// treated exactly like a missing resource.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/semaphore"
)

const DefaultTimeout = 5 * time.Second

var (
	ErrNotFound            = errors.New("remote resource not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Pool bounds the number of validator calls in flight across every client
// sharing it.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(size int64) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(size)}
}

type client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
	timeout time.Duration
	pool    *Pool
}

func newClient(log *slog.Logger, baseURL string, timeout time.Duration, pool *Pool) client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if pool == nil {
		pool = NewPool(64)
	}
	return client{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		pool:    pool,
	}
}

// fetch issues GET baseURL+path under the hard timeout and decodes a 200 body
// into out when out is non-nil. A 404 yields ErrNotFound; every other failure
// wraps ErrUpstreamUnavailable. Waiting for a pool slot counts against the
// same timeout.
func (c client) fetch(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pool.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: no validation slot: %v", ErrUpstreamUnavailable, err)
	}
	defer c.pool.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
