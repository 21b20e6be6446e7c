package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/auditlog"
	"github.com/example/order-pipeline/internal/email"
	"github.com/example/order-pipeline/internal/infrastructure/store"
	"github.com/example/order-pipeline/internal/notification"
)

type captureTransport struct {
	sent []email.Message
}

func (c *captureTransport) Send(ctx context.Context, msg email.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestPipeline_SubmitToEmailAndAudit(t *testing.T) {
	s := newTestServer(nil)
	ctx := context.Background()

	rr, resp := s.post(t, validBody, nil)
	require.Equal(t, 200, rr.Code)
	require.NotNil(t, resp.Data)
	orderID := resp.Data.OrderID
	require.Len(t, s.publisher.events, 1)

	transport := &captureTransport{}
	notifier := notification.NewHandler(email.NewService(transport, "orders@example.com"), zap.NewNop())
	audits := store.NewMemoryAuditStore()
	recorder := auditlog.NewRecorder(audits, zap.NewNop())

	event := s.publisher.events[0]
	require.NoError(t, notifier.HandleEvent(ctx, []byte(orderID), event))
	require.NoError(t, recorder.HandleEvent(ctx, []byte(orderID), event))

	records := audits.Records()
	require.Len(t, records, 1)
	assert.Equal(t, orderID, records[0].OrderID)
	assert.Equal(t, "19.98", records[0].OrderDetails.TotalAmount.String())
	assert.Equal(t, 1, records[0].OrderDetails.ItemCount)

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "jane@x.com", msg.To)
	assert.Contains(t, msg.Subject, orderID)
	for _, want := range []string{"P1", "2", "$9.99", "$19.98"} {
		assert.Contains(t, msg.HTML, want)
	}
}
