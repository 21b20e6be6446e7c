package command

import (
	"errors"
	"fmt"

	"github.com/example/order-pipeline/internal/domain/order"
)

// SubmitOrder is the command issued for every POST /order request.
type SubmitOrder struct {
	order.Submission
}

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrSaveFailed    = errors.New("failed to save order")
	ErrPublishFailed = errors.New("order saved but failed to publish event")
)

// PublishError is returned when the order was persisted but its event could
// not be sent. Order is the saved order.
type PublishError struct {
	Order *order.Order
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: order %s: %v", ErrPublishFailed, e.Order.ID, e.Err)
}

func (e *PublishError) Unwrap() []error { return []error{ErrPublishFailed, e.Err} }
