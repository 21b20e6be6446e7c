package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrUncommitted is returned by Consume when a message could neither be
// handled nor dead-lettered.
var ErrUncommitted = errors.New("kafka: message left uncommitted")

const minFetchRetryDelay = 100 * time.Millisecond

type MessageHandler func(ctx context.Context, key, value []byte) error

// Permanent is implemented by handler errors that no redelivery can fix,
// such as a payload that does not parse.
type Permanent interface {
	Permanent() bool
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	GroupID       string
	MaxDeliveries int
	Backoff       time.Duration
}

// Consumer delivers each message to a handler at least once. Offsets are
// committed only after the handler succeeds or the message is dead-lettered.
type Consumer struct {
	reader        messageReader
	dlq           *DLQPublisher
	logger        *zap.Logger
	maxDeliveries int
	backoff       time.Duration
}

func NewConsumer(cfg ConsumerConfig, dlq *DLQPublisher, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(reader, dlq, logger, cfg.MaxDeliveries, cfg.Backoff)
}

func newConsumer(reader messageReader, dlq *DLQPublisher, logger *zap.Logger, maxDeliveries int, backoff time.Duration) *Consumer {
	if maxDeliveries < 1 {
		maxDeliveries = 1
	}
	return &Consumer{
		reader:        reader,
		dlq:           dlq,
		logger:        logger,
		maxDeliveries: maxDeliveries,
		backoff:       backoff,
	}
}

// Consume blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The reader returns io.EOF once closed; nothing more will arrive.
			if errors.Is(err, io.EOF) {
				return err
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			if err := sleep(ctx, max(c.backoff, minFetchRetryDelay)); err != nil {
				return err
			}
			continue
		}

		if !c.deliver(ctx, msg, handler) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Committing a later offset would skip this message, so stop here and
			// let the group redeliver it to the next consumer.
			return ErrUncommitted
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		}
	}
}

// deliver runs handler until it succeeds or deliveries run out, and reports
// whether the offset may be committed.
func (c *Consumer) deliver(ctx context.Context, msg kafka.Message, handler MessageHandler) bool {
	log := c.logger.With(
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.ByteString("key", msg.Key),
	)

	var (
		lastErr    error
		deliveries int
	)
	for deliveries < c.maxDeliveries {
		if deliveries > 0 {
			backoff := c.backoff * time.Duration(1<<uint(deliveries-1))
			if err := sleep(ctx, backoff); err != nil {
				return false
			}
		}
		deliveries++

		lastErr = handler(ctx, msg.Key, msg.Value)
		if lastErr == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		log.Warn("handler failed",
			zap.Error(lastErr),
			zap.Int("delivery", deliveries),
			zap.Int("max_deliveries", c.maxDeliveries),
		)

		var perm Permanent
		if errors.As(lastErr, &perm) && perm.Permanent() {
			break
		}
	}

	if c.dlq == nil {
		log.Error("dropping message after failed deliveries", zap.Error(lastErr), zap.Int("deliveries", deliveries))
		return true
	}
	if err := c.dlq.Publish(ctx, msg, lastErr, deliveries); err != nil {
		log.Error("failed to publish to DLQ, not committing", zap.Error(err))
		return false
	}
	return true
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
