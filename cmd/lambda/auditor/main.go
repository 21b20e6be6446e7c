package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/auditlog"
	"github.com/example/order-pipeline/internal/bootstrap"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/infrastructure/sqs"
	"github.com/example/order-pipeline/internal/logging"
)

func main() {
	cfg, err := config.LoadAuditor()
	if err != nil {
		logging.Must(logging.Config{Service: "audit-recorder"}).Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.Must(logging.Config{Service: "audit-recorder", Level: cfg.Level, Format: cfg.Format})
	defer logging.Sync(logger)

	var res bootstrap.Resources
	defer res.Close(logger)

	records, err := res.AuditStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize audit store", zap.Error(err))
	}
	recorder := auditlog.NewRecorder(records, logger)

	logger.Info("initialized", zap.String("table", cfg.AuditTableName))
	lambda.Start(func(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
		return sqs.HandleBatch(ctx, event, recorder.HandleEvent, logger), nil
	})
}
