package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"remarket/infra/rabbitmq"
	"remarket/internal/consumers"
	"remarket/pkg/config"
	"remarket/pkg/events"
	"remarket/pkg/storage"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Image cleanup worker starting...")

	// Load application config
	appConfig := config.Read()
	zap.L().Info("Worker config loaded",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("rabbitMQURL", appConfig.RabbitMQURL),
		zap.String("imageStore", appConfig.ImageStore),
	)

	// Validate RabbitMQ URL
	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	var imageStore storage.ImageStore
	switch appConfig.ImageStore {
	case "s3":
		imageStore = storage.NewS3Store(appConfig)
	default:
		imageStore = storage.NewDiskStore(appConfig.UploadDir)
	}

	cleanupHandler := consumers.NewImageCleanupHandler(
		imageStore,
		zap.L(),
	)

	// Deletion events carry the file URLs to remove, so the worker only
	// needs the image store and the queue.
	cleanupConsumerConfig := rabbitmq.ConsumerConfig{
		Exchange:      events.ProductExchange,
		QueueName:     "worker.product.deletions.v1", // Queue name: {service}.{domain}.{events}.{version}
		RoutingKeys:   []string{"product.deleted.v1", "product.image.deleted.v1"},
		ServiceName:   appConfig.ServiceName,
		PrefetchCount: 10,
	}

	cleanupConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, cleanupConsumerConfig)
	if err != nil {
		zap.L().Fatal("Failed to create cleanup consumer", zap.Error(err))
	}
	defer cleanupConsumer.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start consumer in goroutine
	go func() {
		zap.L().Info("Starting image cleanup consumer...")
		if err := cleanupConsumer.Consume(ctx, cleanupHandler.HandleEvent); err != nil {
			if err != context.Canceled {
				zap.L().Error("Cleanup consumer error", zap.Error(err))
			}
		}
	}()

	zap.L().Info("Worker service started successfully. Waiting for events...")
	zap.L().Info("Consuming from exchange",
		zap.String("exchange", events.ProductExchange),
	)
	zap.L().Info("Press Ctrl+C to stop...")

	// Wait for shutdown signal
	<-sigChan
	zap.L().Info("Shutdown signal received, stopping worker service...")
	cancel()

	zap.L().Info("Worker service stopped gracefully")
}
