package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/internal/shipping/application"
	shippingkafka "github.com/dmehra2102/order-saga/internal/shipping/infrastructure/kafka"
	"github.com/dmehra2102/order-saga/internal/shipping/infrastructure/memory"
	"github.com/dmehra2102/order-saga/internal/shipping/infrastructure/mongodb"
	"github.com/dmehra2102/order-saga/pkg/config"
	"github.com/dmehra2102/order-saga/pkg/logging"
	"github.com/dmehra2102/order-saga/pkg/messaging"
	"github.com/dmehra2102/order-saga/pkg/metrics"
	"github.com/dmehra2102/order-saga/pkg/server"
	"github.com/dmehra2102/order-saga/pkg/shutdown"
	"github.com/dmehra2102/order-saga/pkg/tracing"
)

func main() {
	cfg, err := config.LoadShipping()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel).With("service", "shipping-service")

	if err := run(cfg, log); err != nil {
		log.Error("shipping-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("shipping-service shutdown complete")
}

func run(cfg *config.Shipping, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := tracing.Init(ctx, "shipping-service", cfg.OTLPEndpoint, log)
	if err != nil {
		return err
	}
	defer func() { _ = stopTracing(context.Background()) }()

	metricsHandler, stopMetrics, err := metrics.Setup()
	if err != nil {
		return fmt.Errorf("metrics setup: %w", err)
	}
	defer func() { _ = stopMetrics(context.Background()) }()
	rec, err := metrics.NewRecorder(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("metrics instruments: %w", err)
	}

	checks := map[string]server.Check{}
	var repo application.ShipmentRepository
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("shipments kept in memory only")
		repo = memory.NewRepository()
	default:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		if repo, err = mongodb.NewRepository(ctx, log, client.Database(cfg.MongoDatabase)); err != nil {
			return err
		}
	}

	svc := application.NewService(log, repo, cfg.Carrier, rec)
	srv := server.New(cfg.HTTPAddr, server.NewRouter(metricsHandler, checks, nil))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return messaging.RunGroup(ctx, log, cfg.KafkaBrokers, orderdomain.TopicOrderCreated,
			shippingkafka.GroupID, cfg.Workers, shippingkafka.NewHandler(svc))
	})
	g.Go(func() error { return server.Run(ctx, log, srv) })
	return g.Wait()
}
