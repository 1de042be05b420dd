package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/order-saga/internal/notification/application"
	notificationkafka "github.com/dmehra2102/order-saga/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/order-saga/internal/notification/infrastructure/memory"
	notificationpg "github.com/dmehra2102/order-saga/internal/notification/infrastructure/postgres"
	orderdomain "github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/pkg/config"
	"github.com/dmehra2102/order-saga/pkg/idempotency"
	"github.com/dmehra2102/order-saga/pkg/logging"
	"github.com/dmehra2102/order-saga/pkg/messaging"
	"github.com/dmehra2102/order-saga/pkg/metrics"
	"github.com/dmehra2102/order-saga/pkg/migrate"
	"github.com/dmehra2102/order-saga/pkg/server"
	"github.com/dmehra2102/order-saga/pkg/shutdown"
	"github.com/dmehra2102/order-saga/pkg/tracing"
)

func main() {
	cfg, err := config.LoadNotification()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel).With("service", "notification-service")

	if err := run(cfg, log); err != nil {
		log.Error("notification-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("notification-service shutdown complete")
}

func run(cfg *config.Notification, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := tracing.Init(ctx, "notification-service", cfg.OTLPEndpoint, log)
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
	var repo application.NotificationRepository
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("notifications kept in memory only")
		repo = memory.NewRepository()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("pg connect: %w", err)
		}
		defer pool.Close()
		if err := migrate.Up(ctx, log, pool, notificationpg.Migrations); err != nil {
			return err
		}
		checks["postgres"] = pool.Ping
		repo = notificationpg.NewRepository(log, pool)
	}

	var claims application.Claims
	if cfg.Dedupe == config.DedupeRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		claims = idempotency.NewStore(rdb, cfg.DedupeTTL)
	}

	svc, err := application.NewService(log, repo, application.Dedupe(cfg.Dedupe), claims, rec)
	if err != nil {
		return err
	}
	log.Info("notification dedupe configured", "mode", cfg.Dedupe)
	srv := server.New(cfg.HTTPAddr, server.NewRouter(metricsHandler, checks, nil))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return messaging.RunGroup(ctx, log, cfg.KafkaBrokers, orderdomain.TopicOrderCreated,
			notificationkafka.GroupID, cfg.Workers, notificationkafka.NewHandler(svc))
	})
	g.Go(func() error { return server.Run(ctx, log, srv) })
	return g.Wait()
}
