package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/example/order-pipeline/internal/infrastructure/store"
)

// EventPublisher announces a persisted order to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, o *order.Order) error
}

type Handler struct {
	orders    store.OrderStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewHandler(orders store.OrderStore, publisher EventPublisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitOrder validates, persists and then publishes an order. Nothing is
// written when validation fails, and a publish failure leaves the saved
// order in place. There are no retries here; the caller owns retry policy.
func (h *Handler) SubmitOrder(ctx context.Context, cmd SubmitOrder) (*order.Order, error) {
	// 1. Validate
	if verrs := order.Validate(cmd.Submission); len(verrs) > 0 {
		h.logger.Info("order rejected", zap.Int("violations", len(verrs)))
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrder, verrs)
	}

	// 2. Persist
	o, err := h.orders.Save(ctx, cmd.Submission)
	if err != nil {
		h.logger.Error("failed to save order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	// 3. Publish
	if err := h.publisher.Publish(ctx, o); err != nil {
		h.logger.Error("order saved but failed to publish event",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return o, &PublishError{Order: o, Err: err}
	}

	h.logger.Info("order accepted",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.TotalAmount.String()),
	)
	return o, nil
}
