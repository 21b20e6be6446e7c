package sqs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// MessageHandler matches the signature of the Kafka consumer handlers so the
// same consumer code serves both transports.
type MessageHandler func(ctx context.Context, key, value []byte) error

var ErrEmptyBody = errors.New("sqs: empty message body")

// snsEnvelope is the wrapper SNS adds when raw message delivery is disabled.
type snsEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
}

// ExtractBody returns the order event payload of an SQS record, unwrapping
// the SNS notification envelope when present.
func ExtractBody(record events.SQSMessage) ([]byte, error) {
	if record.Body == "" {
		return nil, ErrEmptyBody
	}

	var env snsEnvelope
	if err := json.Unmarshal([]byte(record.Body), &env); err == nil && env.Type == "Notification" {
		return []byte(env.Message), nil
	}
	return []byte(record.Body), nil
}

// HandleBatch runs handler for every record and reports the failures so only
// those messages return to the queue.
func HandleBatch(ctx context.Context, event events.SQSEvent, handler MessageHandler, logger *zap.Logger) events.SQSEventResponse {
	var failures []events.SQSBatchItemFailure

	for _, record := range event.Records {
		log := logger.With(zap.String("message_id", record.MessageId))

		body, err := ExtractBody(record)
		if err == nil {
			err = handler(ctx, []byte(record.MessageId), body)
		}
		if err != nil {
			log.Error("failed to process message", zap.Error(err))
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
	}

	logger.Info("processed batch",
		zap.Int("records", len(event.Records)),
		zap.Int("failed", len(failures)),
	)

	return events.SQSEventResponse{BatchItemFailures: failures}
}
