package main

import (
	"context"
	"os"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.uber.org/zap"

	"vidbot/internal/app"
)

// DEV_STORAGE picks the container to start: clickhouse (default) or mongo
func main() {
	logger, _ := app.NewLogger("debug")
	defer logger.Sync()

	os.Exit(run(logger))
}

func run(logger *zap.Logger) int {
	ctx := context.Background()

	backend := os.Getenv("DEV_STORAGE")
	if backend == "" {
		backend = "clickhouse"
	}

	var (
		container testcontainers.Container
		err       error
	)
	switch backend {
	case "mongo":
		container, err = startMongo(ctx, logger)
	case "clickhouse":
		container, err = startClickHouse(ctx, logger)
	default:
		logger.Error("Unknown DEV_STORAGE, use clickhouse or mongo", zap.String("value", backend))
		return 1
	}
	if err != nil {
		logger.Error("Failed to start storage container", zap.String("backend", backend), zap.Error(err))
		if container != nil {
			testcontainers.TerminateContainer(container)
		}
		return 1
	}

	// Ensure container cleanup on exit
	defer func() {
		logger.Info("Stopping storage container...")
		if err := testcontainers.TerminateContainer(container); err != nil {
			logger.Warn("Failed to terminate container", zap.Error(err))
		}
	}()

	os.Setenv("WEBHOOK_MODE", "false")
	os.Setenv("MINIAPP_INSECURE_DEV_AUTH", "true")
	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8080")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		logger.Warn("⚠️  TELEGRAM_BOT_TOKEN not set. The bot will fail to start without a valid token.")
	}
	if os.Getenv("CATEGORY_1_CHANNEL") == "" {
		logger.Warn("⚠️  CATEGORY_n_CHANNEL not set. Channel posts will not be indexed.")
	}
	if os.Getenv("ADMIN_IDS") == "" {
		logger.Warn("⚠️  ADMIN_IDS not set. Admin commands will be refused for everyone.")
	}

	logger.Info("Starting application", zap.String("backend", backend))

	application, err := app.New()
	if err != nil {
		logger.Error("Failed to create application", zap.Error(err))
		return 1
	}

	// Run blocks until SIGINT or SIGTERM
	if err := application.Run(); err != nil {
		logger.Error("Application error", zap.Error(err))
		return 1
	}
	return 0
}

func startClickHouse(ctx context.Context, logger *zap.Logger) (testcontainers.Container, error) {
	logger.Info("Starting ClickHouse testcontainer...")

	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return container, err
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return container, err
	}

	logger.Info("ClickHouse started", zap.String("host", host), zap.String("port", port.Port()))

	os.Setenv("STORAGE_BACKEND", "clickhouse")
	os.Setenv("CLICKHOUSE_HOST", host)
	os.Setenv("CLICKHOUSE_PORT", port.Port())
	os.Setenv("CLICKHOUSE_DATABASE", "default")
	os.Setenv("CLICKHOUSE_USER", "default")
	os.Setenv("CLICKHOUSE_PASSWORD", "devpassword")
	os.Setenv("CLICKHOUSE_USE_TLS", "false")
	return container, nil
}

func startMongo(ctx context.Context, logger *zap.Logger) (testcontainers.Container, error) {
	logger.Info("Starting MongoDB testcontainer...")

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container, err
	}

	logger.Info("MongoDB started", zap.String("uri", uri))

	os.Setenv("STORAGE_BACKEND", "mongo")
	os.Setenv("MONGODB_URI", uri)
	os.Setenv("DB_NAME", "telegram_video_bot_dev")
	return container, nil
}
