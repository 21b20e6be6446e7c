package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/auditlog"
	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAuditor()
	if err == nil {
		if cfg.Kafka.GroupID == "" {
			cfg.Kafka.GroupID = "audit-recorder"
		}
		err = cfg.Kafka.ValidateConsumer(cfg.OrderTopic)
	}
	if err != nil {
		logging.Must(logging.Config{Service: "audit-recorder"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "audit-recorder", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var res bootstrap.Resources
	defer res.Close(logger)

	records, err := res.AuditStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize audit store", zap.Error(err))
	}
	recorder := auditlog.NewRecorder(records, logger)
	consumer := res.Consumer(cfg.Kafka, cfg.OrderTopic, logger)

	logger.Info("consuming order events",
		zap.String("topic", cfg.OrderTopic),
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.String("store_backend", cfg.StoreBackend),
	)
	if err := consumer.Consume(ctx, recorder.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
