// Package metrics exposes the saga's OpenTelemetry instruments through a
// Prometheus scrape endpoint.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Consumer outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Setup installs a global MeterProvider backed by a dedicated Prometheus
// registry and returns the scrape handler.
func Setup() (http.Handler, func(context.Context) error, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), mp.Shutdown, nil
}

// Recorder holds the saga instruments. A nil *Recorder records nothing.
type Recorder struct {
	ordersCreated   metric.Int64Counter
	ordersRejected  metric.Int64Counter
	eventsPublished metric.Int64Counter
	publishFailures metric.Int64Counter
	eventsHandled   metric.Int64Counter
}

func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter("github.com/dmehra2102/order-saga")
	r := &Recorder{}
	var err error

	if r.ordersCreated, err = meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders persisted by the coordinator")); err != nil {
		return nil, err
	}
	if r.ordersRejected, err = meter.Int64Counter("orders_rejected_total",
		metric.WithDescription("Order requests rejected before persistence")); err != nil {
		return nil, err
	}
	if r.eventsPublished, err = meter.Int64Counter("events_published_total",
		metric.WithDescription("Events handed to the message channel")); err != nil {
		return nil, err
	}
	if r.publishFailures, err = meter.Int64Counter("event_publish_failures_total",
		metric.WithDescription("Events the message channel failed to deliver")); err != nil {
		return nil, err
	}
	if r.eventsHandled, err = meter.Int64Counter("events_handled_total",
		metric.WithDescription("Events processed by reactive consumers")); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) OrderCreated(ctx context.Context) {
	if r == nil {
		return
	}
	r.ordersCreated.Add(ctx, 1)
}

func (r *Recorder) OrderRejected(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	r.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (r *Recorder) EventPublished(ctx context.Context, topic string) {
	if r == nil {
		return
	}
	r.eventsPublished.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (r *Recorder) PublishFailed(ctx context.Context, topic string, n int) {
	if r == nil {
		return
	}
	r.publishFailures.Add(ctx, int64(n), metric.WithAttributes(attribute.String("topic", topic)))
}

func (r *Recorder) EventHandled(ctx context.Context, consumer, outcome string) {
	if r == nil {
		return
	}
	r.eventsHandled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("consumer", consumer),
		attribute.String("outcome", outcome),
	))
}
