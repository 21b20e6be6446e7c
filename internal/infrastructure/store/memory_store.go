package store

import (
	"context"
	"sync"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
)

// MemoryOrderStore keeps orders in process memory. Used for local runs and tests.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]order.Order)}
}

func (s *MemoryOrderStore) Save(ctx context.Context, sub order.Submission) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOrder(sub)

	s.mu.Lock()
	s.orders[o.ID] = copyOrder(*o)
	s.mu.Unlock()

	return o, nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, orderID string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	c := copyOrder(o)
	return &c, nil
}

// Len returns the number of stored orders.
func (s *MemoryOrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func copyOrder(o order.Order) order.Order {
	o.Items = append([]order.LineItem(nil), o.Items...)
	return o
}

// MemoryAuditStore keeps audit records in insertion order.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []audit.Record
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) Put(ctx context.Context, rec audit.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of every stored record.
func (s *MemoryAuditStore) Records() []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record(nil), s.records...)
}
