package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/api"
	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/command"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/logging"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		logging.Must(logging.Config{Service: "order-api-lambda"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "order-api-lambda", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	ctx := context.Background()
	var res bootstrap.Resources
	defer res.Close(logger)

	orders, err := res.OrderStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize order store", zap.Error(err))
	}
	publisher, err := res.Publisher(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize event publisher", zap.Error(err))
	}

	handlers := api.NewHandlers(command.NewHandler(orders, publisher, logger), nil, logger)

	logger.Info("initialized", zap.String("table", cfg.OrderTableName))
	lambda.Start(handlers.HandleGatewayRequest)
}
