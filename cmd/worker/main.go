package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentwire/pipeline-tracker/internal/config"
	"github.com/talentwire/pipeline-tracker/internal/infra/postgresql"
	infraredis "github.com/talentwire/pipeline-tracker/internal/infra/redis"
	"github.com/talentwire/pipeline-tracker/internal/observability"
	"github.com/talentwire/pipeline-tracker/internal/provider"
	"github.com/talentwire/pipeline-tracker/internal/queue"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"github.com/talentwire/pipeline-tracker/internal/service"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
	reminderScanLimit        = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.OutboundRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer broker.Close()

	consumer := queue.NewRabbitMQConsumer(broker, cfg.WorkerConcurrency, logger)
	publisher := queue.NewRabbitMQPublisher(broker)

	emailProvider, err := provider.NewEmailGatewayProvider(cfg.EmailGatewayURL)
	if err != nil {
		logger.Fatal("email gateway initialization failed", zap.Error(err))
	}

	applicationRepo := repository.NewGormApplicationRepo(db)
	interviewRepo := repository.NewGormInterviewRepo(db)

	delivery, err := service.NewDeliveryService(interviewRepo, consumer, emailProvider, rateLimiter, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal("delivery service initialization failed", zap.Error(err))
	}

	scanner, err := service.NewReminderScanner(
		interviewRepo,
		applicationRepo,
		publisher,
		time.Duration(cfg.ReminderScanIntervalSec)*time.Second,
		reminderScanLimit,
		logger,
	)
	if err != nil {
		logger.Fatal("reminder scanner initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	delivery.SetMetrics(metrics)
	scanner.SetMetrics(metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerMetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("delivery workers started", zap.Int("concurrency", cfg.WorkerConcurrency))
		return delivery.Start(gctx)
	})

	g.Go(func() error {
		logger.Info("reminder scanner started", zap.Int("intervalSeconds", cfg.ReminderScanIntervalSec))
		return scanner.Start(gctx)
	})

	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped with error", zap.Error(err))
	}

	logger.Info("worker stopped")
}
