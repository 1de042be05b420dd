package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/dmehra2102/order-saga/internal/order/application"
	orderhttp "github.com/dmehra2102/order-saga/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/order-saga/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/order-saga/internal/order/infrastructure/memory"
	orderpg "github.com/dmehra2102/order-saga/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/order-saga/internal/order/infrastructure/validation"
	"github.com/dmehra2102/order-saga/pkg/config"
	"github.com/dmehra2102/order-saga/pkg/logging"
	"github.com/dmehra2102/order-saga/pkg/messaging"
	"github.com/dmehra2102/order-saga/pkg/metrics"
	"github.com/dmehra2102/order-saga/pkg/migrate"
	"github.com/dmehra2102/order-saga/pkg/server"
	"github.com/dmehra2102/order-saga/pkg/shutdown"
	"github.com/dmehra2102/order-saga/pkg/tracing"
)

func main() {
	cfg, err := config.LoadOrder()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel).With("service", "order-service")

	if err := run(cfg, log); err != nil {
		log.Error("order-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("order-service shutdown complete")
}

func run(cfg *config.Order, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := tracing.Init(ctx, "order-service", cfg.OTLPEndpoint, log)
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
	var repo application.OrderRepository
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("orders kept in memory only")
		repo = memory.NewRepository()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("pg connect: %w", err)
		}
		defer pool.Close()
		if err := migrate.Up(ctx, log, pool, orderpg.Migrations); err != nil {
			return err
		}
		checks["postgres"] = pool.Ping
		repo = orderpg.NewRepository(log, pool)
	}

	var publisher application.EventPublisher = orderkafka.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		writer := messaging.NewWriter(log, cfg.KafkaBrokers, rec)
		defer writer.Close()
		publisher = orderkafka.NewEventPublisher(messaging.NewPublisher(log, writer, rec))
	} else {
		log.Warn("no kafka brokers configured, order events are dropped")
	}

	pool := validation.NewPool(cfg.ValidationMaxFlight)
	customers := validation.NewCustomerClient(log, cfg.CustomerURL, cfg.ValidationTimeout, pool)
	inventory := validation.NewInventoryClient(log, cfg.InventoryURL, cfg.ValidationTimeout, pool)

	svc := application.NewService(log, repo, customers, inventory, publisher, rec)
	handler := orderhttp.NewHandler(log, svc)

	srv := server.New(cfg.HTTPAddr, server.NewRouter(metricsHandler, checks, handler.Routes()),
		server.WithWriteTimeout(cfg.WriteTimeout()))
	return server.Run(ctx, log, srv)
}
