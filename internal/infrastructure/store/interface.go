package store

import (
	"context"
	"time"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/google/uuid"
)

// OrderStore persists orders. Save is the only place an order ID is generated.
// Implementations must be safe for concurrent use.
type OrderStore interface {
	// Save assigns ID, creation time and totals, then durably writes the order
	// before returning it. On error nothing may be assumed to have been written.
	Save(ctx context.Context, sub order.Submission) (*order.Order, error)

	// Get returns order.ErrOrderNotFound when no order has the given ID.
	Get(ctx context.Context, orderID string) (*order.Order, error)
}

// AuditStore appends audit records. Records are never updated.
type AuditStore interface {
	Put(ctx context.Context, rec audit.Record) error
}

// newOrder builds an order with a random 128-bit identifier and the current UTC time.
func newOrder(sub order.Submission) *order.Order {
	return order.New(sub, uuid.New().String(), time.Now().UTC())
}
