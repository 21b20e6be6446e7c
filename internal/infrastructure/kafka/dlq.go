package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DLQPublisher forwards messages that exhausted their deliveries to a dead letter topic.
type DLQPublisher struct {
	logger *zap.Logger
	writer messageWriter
}

func NewDLQPublisher(logger *zap.Logger, brokers []string, topic string) *DLQPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &DLQPublisher{logger: logger, writer: writer}
}

// DLQMessage wraps the original message with the reason it was given up on.
type DLQMessage struct {
	OriginalTopic     string    `json:"originalTopic"`
	OriginalPartition int       `json:"originalPartition"`
	OriginalOffset    int64     `json:"originalOffset"`
	OriginalKey       string    `json:"originalKey"`
	OriginalValue     string    `json:"originalValue"`
	ErrorMessage      string    `json:"errorMessage"`
	Deliveries        int       `json:"deliveries"`
	FailedAt          time.Time `json:"failedAt"`
}

func (p *DLQPublisher) Publish(ctx context.Context, m kafka.Message, cause error, deliveries int) error {
	msg := DLQMessage{
		OriginalTopic:     m.Topic,
		OriginalPartition: m.Partition,
		OriginalOffset:    m.Offset,
		OriginalKey:       string(m.Key),
		OriginalValue:     string(m.Value),
		Deliveries:        deliveries,
		FailedAt:          time.Now().UTC(),
	}
	if cause != nil {
		msg.ErrorMessage = cause.Error()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("kafka: marshal DLQ message: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: payload}); err != nil {
		return fmt.Errorf("kafka: write DLQ message: %w", err)
	}

	p.logger.Warn("message published to DLQ",
		zap.String("original_topic", m.Topic),
		zap.Int("original_partition", m.Partition),
		zap.Int64("original_offset", m.Offset),
		zap.String("error_message", msg.ErrorMessage),
	)
	return nil
}

func (p *DLQPublisher) Close() error {
	return p.writer.Close()
}
