package order

import (
	"encoding/json"
	"fmt"
)

// EventTypeOrderCreated identifies the only event this pipeline emits.
const EventTypeOrderCreated = "ORDER_CREATED"

// Event is the denormalized order broadcast to downstream consumers.
// The transport may deliver it more than once.
type Event struct {
	OrderID       string     `json:"orderId"`
	CustomerID    string     `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Items         []LineItem `json:"items"`
	TotalAmount   Money      `json:"totalAmount"`
	CreatedAt     string     `json:"createdAt"`
}

func NewEvent(o *Order) Event {
	return Event{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         o.Items,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAtString(),
	}
}

// ParseEvent decodes an event payload. Field presence is not checked here;
// each consumer decides which fields it requires.
func ParseEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode order event: %w", err)
	}
	return e, nil
}
