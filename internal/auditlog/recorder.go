package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/example/order-pipeline/internal/infrastructure/store"
)

// ParseError is returned for an event payload that can never be recorded.
type ParseError struct {
	Field   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auditlog: %s: %v", e.Message, e.Err)
	}
	return "auditlog: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// Permanent marks the error as not worth redelivering.
func (e *ParseError) Permanent() bool { return true }

// Recorder writes one audit record per delivered order event.
type Recorder struct {
	records store.AuditStore
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewRecorder(records store.AuditStore, logger *zap.Logger) *Recorder {
	return &Recorder{
		records: records,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// HandleEvent records the event. Redelivered events produce additional
// records with fresh audit IDs; nothing is deduplicated by order ID.
func (r *Recorder) HandleEvent(ctx context.Context, key, value []byte) error {
	e, err := order.ParseEvent(value)
	if err != nil {
		r.logger.Error("failed to decode order event", zap.ByteString("key", key), zap.Error(err))
		return &ParseError{Message: "malformed order event", Err: err}
	}
	if e.OrderID == "" {
		r.logger.Error("order event without orderId", zap.ByteString("key", key))
		return &ParseError{Field: "orderId", Message: "orderId is required"}
	}

	rec := audit.NewRecord(e, r.newID(), r.now())
	log := r.logger.With(zap.String("order_id", rec.OrderID), zap.String("audit_id", rec.AuditID))

	if err := r.records.Put(ctx, rec); err != nil {
		log.Error("failed to write audit record", zap.Error(err))
		return fmt.Errorf("auditlog: record order %s: %w", rec.OrderID, err)
	}

	log.Info("audit record written",
		zap.Int("item_count", rec.OrderDetails.ItemCount),
		zap.String("total", rec.OrderDetails.TotalAmount.String()),
	)
	return nil
}
