package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const eventJSON = `{"orderId":"order-1","customerName":"Jane Doe"}`

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "raw delivery",
			body: eventJSON,
			want: eventJSON,
		},
		{
			name: "sns envelope",
			body: `{"Type":"Notification","MessageId":"m-1","TopicArn":"arn","Message":"{\"orderId\":\"order-1\",\"customerName\":\"Jane Doe\"}"}`,
			want: eventJSON,
		},
		{
			name: "non-json body passed through",
			body: "not json",
			want: "not json",
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: ErrEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBody(events.SQSMessage{Body: tt.body})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestHandleBatch_ReportsOnlyFailures(t *testing.T) {
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok-1", Body: eventJSON},
		{MessageId: "bad-1", Body: eventJSON},
		{MessageId: "empty-1", Body: ""},
		{MessageId: "ok-2", Body: eventJSON},
	}}

	var handled []string
	resp := HandleBatch(context.Background(), event, func(ctx context.Context, key, value []byte) error {
		handled = append(handled, string(key))
		if string(key) == "bad-1" {
			return errors.New("ses throttled")
		}
		assert.JSONEq(t, eventJSON, string(value))
		return nil
	}, zap.NewNop())

	assert.Equal(t, []string{"ok-1", "bad-1", "ok-2"}, handled)
	assert.Equal(t, []events.SQSBatchItemFailure{
		{ItemIdentifier: "bad-1"},
		{ItemIdentifier: "empty-1"},
	}, resp.BatchItemFailures)
}

func TestHandleBatch_AllSucceed(t *testing.T) {
	event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "1", Body: eventJSON}}}

	resp := HandleBatch(context.Background(), event, func(ctx context.Context, key, value []byte) error {
		return nil
	}, zap.NewNop())

	assert.Empty(t, resp.BatchItemFailures)
}
