package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/domain/order"
)

var ErrMissingOrderID = errors.New("notification: event has no orderId")

// ConfirmationSender sends the order confirmation for an event.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, e order.Event) error
}

// Handler processes order events for sending notifications
type Handler struct {
	sender ConfirmationSender
	logger *zap.Logger
}

func NewHandler(sender ConfirmationSender, logger *zap.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// HandleEvent sends one confirmation email per delivery. There is no local
// retry; an error is returned so the transport redelivers the event.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	e, err := order.ParseEvent(value)
	if err != nil {
		h.logger.Error("failed to decode order event", zap.ByteString("key", key), zap.Error(err))
		return err
	}
	if e.OrderID == "" {
		return ErrMissingOrderID
	}

	log := h.logger.With(zap.String("order_id", e.OrderID))
	log.Info("sending order confirmation", zap.Int("items", len(e.Items)))

	if err := h.sender.SendOrderConfirmation(ctx, e); err != nil {
		log.Error("failed to send order confirmation", zap.Error(err))
		return err
	}

	log.Info("order confirmation sent")
	return nil
}
