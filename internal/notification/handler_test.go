package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/example/order-pipeline/internal/email"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendOrderConfirmation(ctx context.Context, e order.Event) error {
	return m.Called(ctx, e).Error(0)
}

type captureTransport struct {
	sent []email.Message
}

func (c *captureTransport) Send(ctx context.Context, msg email.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func eventPayload(t *testing.T) []byte {
	t.Helper()
	o := order.New(order.Submission{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		Items:         []order.Item{{ProductID: "P1", Quantity: 2, Price: order.MustMoney("9.99")}},
	}, "order-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	data, err := json.Marshal(order.NewEvent(o))
	require.NoError(t, err)
	return data
}

func TestHandler_HandleEvent_SendsConfirmation(t *testing.T) {
	transport := &captureTransport{}
	h := NewHandler(email.NewService(transport, "orders@example.com"), zap.NewNop())

	require.NoError(t, h.HandleEvent(context.Background(), []byte("order-1"), eventPayload(t)))
	require.Len(t, transport.sent, 1)

	msg := transport.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Order Confirmation - Order #order-1", msg.Subject)
	assert.Contains(t, msg.HTML, "P1")
	assert.Contains(t, msg.HTML, "$9.99")
	assert.Contains(t, msg.HTML, "$19.98")
}

func TestHandler_HandleEvent_Redelivery(t *testing.T) {
	// Every delivery sends again; duplicates are accepted.
	transport := &captureTransport{}
	h := NewHandler(email.NewService(transport, "orders@example.com"), zap.NewNop())
	payload := eventPayload(t)

	require.NoError(t, h.HandleEvent(context.Background(), nil, payload))
	require.NoError(t, h.HandleEvent(context.Background(), nil, payload))
	assert.Len(t, transport.sent, 2)
}

func TestHandler_HandleEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		sendErr error
		wantErr error
	}{
		{name: "malformed payload", payload: []byte("{not json")},
		{name: "missing order id", payload: []byte(`{"customerEmail":"jane@example.com"}`), wantErr: ErrMissingOrderID},
		{name: "send failure", sendErr: errors.New("ses throttled")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{}
			payload := tt.payload
			if payload == nil {
				payload = eventPayload(t)
				sender.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(tt.sendErr).Once()
			}
			h := NewHandler(sender, zap.NewNop())

			err := h.HandleEvent(context.Background(), nil, payload)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.sendErr != nil {
				assert.ErrorIs(t, err, tt.sendErr)
			}
			sender.AssertExpectations(t)
		})
	}
}
