package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the ISO-8601 layout used for createdAt on the wire.
const TimeLayout = time.RFC3339Nano

var ErrOrderNotFound = errors.New("order not found")

// Item is a line of a customer submission. Subtotals are never read from input.
type Item struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       Money  `json:"price"`
}

// Submission is the raw order data sent by a customer, before the server
// assigns identity, timestamp and totals.
type Submission struct {
	CustomerID    string `json:"customerId,omitempty"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Items         []Item `json:"items"`
}

// LineItem is an Item with its server-computed subtotal.
type LineItem struct {
	Item
	Subtotal Money `json:"subtotal"`
}

// Order is the persisted, authoritative record. It is never mutated after New.
type Order struct {
	ID            string     `json:"orderId"`
	CustomerID    string     `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Items         []LineItem `json:"items"`
	TotalAmount   Money      `json:"totalAmount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// New builds an Order from a submission, computing every subtotal as
// quantity × price and the total as their sum, both rounded to cents.
func New(sub Submission, id string, createdAt time.Time) *Order {
	items := make([]LineItem, len(sub.Items))
	total := decimal.Zero
	for i, it := range sub.Items {
		subtotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		items[i] = LineItem{Item: it, Subtotal: NewMoney(subtotal)}
		total = total.Add(subtotal)
	}

	return &Order{
		ID:            id,
		CustomerID:    sub.CustomerID,
		CustomerName:  sub.CustomerName,
		CustomerEmail: sub.CustomerEmail,
		Items:         items,
		TotalAmount:   NewMoney(total.Round(2)),
		CreatedAt:     createdAt.UTC(),
	}
}

// CreatedAtString returns CreatedAt in TimeLayout.
func (o *Order) CreatedAtString() string {
	return o.CreatedAt.Format(TimeLayout)
}
