package audit

import (
	"time"

	"github.com/example/order-pipeline/internal/domain/order"
)

// OrderDetails is the snapshot of an order captured at audit time.
type OrderDetails struct {
	CustomerID    string      `json:"customerId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	ItemCount     int         `json:"itemCount"`
	TotalAmount   order.Money `json:"totalAmount"`
}

// Record is an append-only audit entry. Each delivery of an order event
// produces its own Record with a fresh AuditID.
type Record struct {
	AuditID      string       `json:"auditId"`
	Timestamp    time.Time    `json:"timestamp"`
	OrderID      string       `json:"orderId"`
	EventType    string       `json:"eventType"`
	OrderDetails OrderDetails `json:"orderDetails"`
}

func NewRecord(e order.Event, auditID string, now time.Time) Record {
	return Record{
		AuditID:   auditID,
		Timestamp: now.UTC(),
		OrderID:   e.OrderID,
		EventType: order.EventTypeOrderCreated,
		OrderDetails: OrderDetails{
			CustomerID:    e.CustomerID,
			CustomerName:  e.CustomerName,
			CustomerEmail: e.CustomerEmail,
			ItemCount:     len(e.Items),
			TotalAmount:   e.TotalAmount,
		},
	}
}
