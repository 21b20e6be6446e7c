package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/order-pipeline/internal/domain/order"
)

var ErrNoRecipient = errors.New("email: no recipient")

// Message is a single outgoing HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Service renders and sends customer emails
type Service struct {
	transport Transport
	from      string
}

func NewService(transport Transport, from string) *Service {
	return &Service{transport: transport, from: from}
}

// SendOrderConfirmation sends the confirmation for e to its customer address.
func (s *Service) SendOrderConfirmation(ctx context.Context, e order.Event) error {
	if e.CustomerEmail == "" {
		return ErrNoRecipient
	}

	body, err := BuildOrderConfirmationBody(e)
	if err != nil {
		return err
	}

	msg := Message{
		From:    s.from,
		To:      e.CustomerEmail,
		Subject: ConfirmationSubject(e.OrderID),
		HTML:    body,
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("email: send confirmation for order %s: %w", e.OrderID, err)
	}
	return nil
}
