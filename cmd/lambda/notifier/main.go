package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/email"
	"github.com/example/order-pipeline/internal/infrastructure/sqs"
	"github.com/example/order-pipeline/internal/logging"
	"github.com/example/order-pipeline/internal/notification"
)

func main() {
	cfg, err := config.LoadNotifier()
	if err != nil {
		logging.Must(logging.Config{Service: "email-notifier"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "email-notifier", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	var res bootstrap.Resources
	defer res.Close(logger)

	transport, err := res.EmailTransport(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to initialize email transport", zap.Error(err))
	}
	handler := notification.NewHandler(email.NewService(transport, cfg.EmailFrom), logger)

	logger.Info("initialized", zap.String("email_backend", cfg.EmailBackend))
	lambda.Start(func(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
		return sqs.HandleBatch(ctx, event, handler.HandleEvent, logger), nil
	})
}
