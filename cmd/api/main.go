package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/talentwire/pipeline-tracker/internal/config"
	"github.com/talentwire/pipeline-tracker/internal/dispatch"
	"github.com/talentwire/pipeline-tracker/internal/handler"
	"github.com/talentwire/pipeline-tracker/internal/infra/postgresql"
	"github.com/talentwire/pipeline-tracker/internal/infra/postgresql/migrations"
	infraredis "github.com/talentwire/pipeline-tracker/internal/infra/redis"
	"github.com/talentwire/pipeline-tracker/internal/observability"
	"github.com/talentwire/pipeline-tracker/internal/queue"
	"github.com/talentwire/pipeline-tracker/internal/repository"
	"github.com/talentwire/pipeline-tracker/internal/service"
	"github.com/talentwire/pipeline-tracker/internal/transport"
)

const shutdownTimeout = 10 * time.Second

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

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
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

	broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer broker.Close()

	applicationRepo := repository.NewGormApplicationRepo(db)
	interviewRepo := repository.NewGormInterviewRepo(db)
	notificationRepo := repository.NewGormNotificationRepo(db)

	dispatcher, err := dispatch.NewDispatcher(notificationRepo, nil, logger)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}

	publisher := queue.NewRabbitMQPublisher(broker)

	applicationService, err := service.NewApplicationService(applicationRepo, interviewRepo, dispatcher, publisher, logger)
	if err != nil {
		logger.Fatal("application service initialization failed", zap.Error(err))
	}

	inboxService, err := service.NewInboxService(notificationRepo, logger)
	if err != nil {
		logger.Fatal("inbox service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	applicationService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:      "pipeline-tracker-api",
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(transport.RequestContext())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterApplicationRoutes(app, applicationService); err != nil {
		logger.Fatal("application routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterInboxRoutes(app, inboxService); err != nil {
		logger.Fatal("inbox routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("pipeline-tracker api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down api server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("api server shutdown failed", zap.Error(err))
	}
}
