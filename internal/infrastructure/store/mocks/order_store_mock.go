package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/order-pipeline/internal/domain/audit"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/google/uuid"
)

// MockOrderStore is a mock implementation of store.OrderStore for testing
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order

	// For tracking calls in tests
	SaveCalls    []order.Submission
	SaveErr      error
	SaveCallback func(ctx context.Context, sub order.Submission) (*order.Order, error)
	GetErr       error
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:    make(map[string]order.Order),
		SaveCalls: make([]order.Submission, 0),
	}
}

// Save records the call and stores the order in memory
func (m *MockOrderStore) Save(ctx context.Context, sub order.Submission) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, sub)

	if m.SaveCallback != nil {
		return m.SaveCallback(ctx, sub)
	}
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	o := order.New(sub, uuid.New().String(), time.Now().UTC())
	m.orders[o.ID] = *o
	return o, nil
}

// Get returns a stored order
func (m *MockOrderStore) Get(ctx context.Context, orderID string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return &o, nil
}

// SaveCallCount returns how many times Save was called
func (m *MockOrderStore) SaveCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SaveCalls)
}

// MockAuditStore is a mock implementation of store.AuditStore for testing
type MockAuditStore struct {
	mu sync.RWMutex

	PutCalls []audit.Record
	PutErr   error
}

// NewMockAuditStore creates a new MockAuditStore
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{PutCalls: make([]audit.Record, 0)}
}

// Put records the call
func (m *MockAuditStore) Put(ctx context.Context, rec audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutCalls = append(m.PutCalls, rec)
	return m.PutErr
}

// Records returns a copy of every record passed to Put
func (m *MockAuditStore) Records() []audit.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]audit.Record(nil), m.PutCalls...)
}
