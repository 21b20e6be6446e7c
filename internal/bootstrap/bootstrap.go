// Package bootstrap builds the adapters selected by configuration. Every
// binary wires its dependencies here once at start-up and passes them down
// explicitly.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/command"
	"github.com/example/order-pipeline/internal/config"
	"github.com/example/order-pipeline/internal/email"
	"github.com/example/order-pipeline/internal/infrastructure/kafka"
	"github.com/example/order-pipeline/internal/infrastructure/sns"
	"github.com/example/order-pipeline/internal/infrastructure/store"
)

// Closer releases a resource opened during wiring.
type Closer func() error

// Resources tracks everything that must be closed on shutdown.
type Resources struct {
	closers []Closer
	awsCfg  *aws.Config
}

func (r *Resources) add(c Closer) { r.closers = append(r.closers, c) }

// Close releases resources in reverse order of acquisition.
func (r *Resources) Close(logger *zap.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("failed to release resource", zap.Error(err))
		}
	}
	r.closers = nil
}

func (r *Resources) aws(ctx context.Context) (aws.Config, error) {
	if r.awsCfg != nil {
		return *r.awsCfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	r.awsCfg = &cfg
	return cfg, nil
}

func (r *Resources) postgres(ctx context.Context, pg config.Postgres, logger *zap.Logger) (*sql.DB, error) {
	db, err := store.ConnectPostgres(ctx, pg.URL)
	if err != nil {
		return nil, err
	}
	r.add(db.Close)

	if err := store.Migrate(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("postgres ready")
	return db, nil
}

// OrderStore returns the order store named by cfg.StoreBackend.
func (r *Resources) OrderStore(ctx context.Context, cfg config.API, logger *zap.Logger) (store.OrderStore, error) {
	logger = logger.With(zap.String("store_backend", cfg.StoreBackend))
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("using in-memory order store; orders are lost on restart")
		return store.NewMemoryOrderStore(), nil
	case config.StorePostgres:
		db, err := r.postgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresOrderStore(db), nil
	default:
		awsCfg, err := r.aws(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoOrderStore(dynamodb.NewFromConfig(awsCfg), cfg.OrderTableName), nil
	}
}

// AuditStore returns the audit store named by cfg.StoreBackend.
func (r *Resources) AuditStore(ctx context.Context, cfg config.Auditor, logger *zap.Logger) (store.AuditStore, error) {
	logger = logger.With(zap.String("store_backend", cfg.StoreBackend))
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("using in-memory audit store; records are lost on restart")
		return store.NewMemoryAuditStore(), nil
	case config.StorePostgres:
		db, err := r.postgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresAuditStore(db), nil
	default:
		awsCfg, err := r.aws(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoAuditStore(dynamodb.NewFromConfig(awsCfg), cfg.AuditTableName), nil
	}
}

// Publisher returns the event publisher named by cfg.PublisherBackend.
func (r *Resources) Publisher(ctx context.Context, cfg config.API) (command.EventPublisher, error) {
	switch cfg.PublisherBackend {
	case config.PublisherKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.OrderTopic)
		r.add(producer.Close)
		return producer, nil
	default:
		awsCfg, err := r.aws(ctx)
		if err != nil {
			return nil, err
		}
		return sns.NewPublisher(awssns.NewFromConfig(awsCfg), cfg.OrderTopic), nil
	}
}

// EmailTransport returns the transport named by cfg.EmailBackend.
func (r *Resources) EmailTransport(ctx context.Context, cfg config.Notifier) (email.Transport, error) {
	switch cfg.EmailBackend {
	case config.EmailSMTP:
		return email.NewSMTPTransport(cfg.SMTP.Host, cfg.SMTP.Port), nil
	default:
		awsCfg, err := r.aws(ctx)
		if err != nil {
			return nil, err
		}
		return email.NewSESTransport(sesv2.NewFromConfig(awsCfg)), nil
	}
}

// Consumer builds a Kafka consumer for topic, with a DLQ publisher when one is configured.
func (r *Resources) Consumer(cfg config.Kafka, topic string, logger *zap.Logger) *kafka.Consumer {
	var dlq *kafka.DLQPublisher
	if cfg.DLQTopic != "" {
		dlq = kafka.NewDLQPublisher(logger, cfg.Brokers, cfg.DLQTopic)
		r.add(dlq.Close)
	}

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:       cfg.Brokers,
		Topic:         topic,
		GroupID:       cfg.GroupID,
		MaxDeliveries: cfg.MaxDeliveries,
		Backoff:       cfg.RedeliveryBackoff,
	}, dlq, logger)
	r.add(consumer.Close)
	return consumer
}
