package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/internal/payment/application"
	paymentkafka "github.com/dmehra2102/order-saga/internal/payment/infrastructure/kafka"
	"github.com/dmehra2102/order-saga/internal/payment/infrastructure/memory"
	paymentpg "github.com/dmehra2102/order-saga/internal/payment/infrastructure/postgres"
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
	cfg, err := config.LoadPayment()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel).With("service", "payment-service")

	if err := run(cfg, log); err != nil {
		log.Error("payment-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("payment-service shutdown complete")
}

func run(cfg *config.Payment, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := tracing.Init(ctx, "payment-service", cfg.OTLPEndpoint, log)
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
	var repo application.PaymentRepository
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("payments kept in memory only")
		repo = memory.NewRepository()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("pg connect: %w", err)
		}
		defer pool.Close()
		if err := migrate.Up(ctx, log, pool, paymentpg.Migrations); err != nil {
			return err
		}
		checks["postgres"] = pool.Ping
		repo = paymentpg.NewRepository(log, pool)
	}

	svc := application.NewService(log, repo, cfg.Method, rec)
	srv := server.New(cfg.HTTPAddr, server.NewRouter(metricsHandler, checks, nil))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return messaging.RunGroup(ctx, log, cfg.KafkaBrokers, orderdomain.TopicOrderCreated,
			paymentkafka.GroupID, cfg.Workers, paymentkafka.NewHandler(svc))
	})
	g.Go(func() error { return server.Run(ctx, log, srv) })
	return g.Wait()
}
