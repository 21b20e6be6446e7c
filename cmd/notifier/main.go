package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/email"
	"github.com/example/order-pipeline/internal/logging"
	"github.com/example/order-pipeline/internal/notification"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadNotifier()
	if err == nil {
		if cfg.Kafka.GroupID == "" {
			cfg.Kafka.GroupID = "email-notifier"
		}
		err = cfg.Kafka.ValidateConsumer(cfg.OrderTopic)
	}
	if err != nil {
		logging.Must(logging.Config{Service: "email-notifier"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "email-notifier", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var res bootstrap.Resources
	defer res.Close(logger)

	transport, err := res.EmailTransport(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize email transport", zap.Error(err))
	}
	handler := notification.NewHandler(email.NewService(transport, cfg.EmailFrom), logger)
	consumer := res.Consumer(cfg.Kafka, cfg.OrderTopic, logger)

	logger.Info("consuming order events",
		zap.String("topic", cfg.OrderTopic),
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.String("email_backend", cfg.EmailBackend),
	)
	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
