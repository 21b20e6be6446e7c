package order

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
	MaxItems      = 50
	MaxQuantity   = 1000
)

// MaxPrice is the highest accepted unit price.
var MaxPrice = MustMoney("999999.99")

var emailValidator = validator.New()

// FieldError describes a single rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the ordered list of every violation found in a submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type rule struct {
	field   string
	message string
	broken  func(Submission) bool
}

type itemRule struct {
	field   string
	message string
	broken  func(Item) bool
}

var submissionRules = []rule{
	{"customerName", "Customer name is required", func(s Submission) bool {
		return isBlank(s.CustomerName)
	}},
	{"customerName", fmt.Sprintf("Customer name must be at least %d characters", MinNameLength), func(s Submission) bool {
		return !isBlank(s.CustomerName) && utf8.RuneCountInString(s.CustomerName) < MinNameLength
	}},
	{"customerName", fmt.Sprintf("Customer name must not exceed %d characters", MaxNameLength), func(s Submission) bool {
		return utf8.RuneCountInString(s.CustomerName) > MaxNameLength
	}},
	{"customerEmail", "Customer email is required", func(s Submission) bool {
		return isBlank(s.CustomerEmail)
	}},
	{"customerEmail", "Customer email must be a valid email address", func(s Submission) bool {
		return !isBlank(s.CustomerEmail) && emailValidator.Var(s.CustomerEmail, "email") != nil
	}},
	{"items", "Order must contain at least one item", func(s Submission) bool {
		return len(s.Items) == 0
	}},
	{"items", fmt.Sprintf("Order cannot contain more than %d items", MaxItems), func(s Submission) bool {
		return len(s.Items) > MaxItems
	}},
}

var itemRules = []itemRule{
	{"productId", "Product ID is required", func(it Item) bool {
		return isBlank(it.ProductID)
	}},
	{"quantity", "Quantity must be greater than 0", func(it Item) bool {
		return it.Quantity <= 0
	}},
	{"quantity", fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity), func(it Item) bool {
		return it.Quantity > MaxQuantity
	}},
	{"price", "Price must be greater than 0", func(it Item) bool {
		return !it.Price.IsPositive()
	}},
	{"price", "Price cannot exceed " + MaxPrice.String(), func(it Item) bool {
		return it.Price.GreaterThan(MaxPrice.Decimal)
	}},
}

// Validate evaluates every rule against s and returns all violations.
// An empty result means the submission is valid.
func Validate(s Submission) ValidationErrors {
	var errs ValidationErrors
	for _, r := range submissionRules {
		if r.broken(s) {
			errs = append(errs, FieldError{Field: r.field, Message: r.message})
		}
	}
	for i, it := range s.Items {
		for _, r := range itemRules {
			if r.broken(it) {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("items[%d].%s", i, r.field),
					Message: r.message,
				})
			}
		}
	}
	return errs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
