package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/example/order-pipeline/internal/domain/order"
)

// ConfirmationSubject returns the subject line of an order confirmation.
func ConfirmationSubject(orderID string) string {
	return fmt.Sprintf("Order Confirmation - Order #%s", orderID)
}

type confirmationRow struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type confirmationData struct {
	CustomerName string
	OrderID      string
	CreatedAt    string
	Rows         []confirmationRow
	Total        string
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #4a6cf7; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Dear {{.CustomerName}},</p>
		<p>We have received your order and it is being processed.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order ID</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
			<p style="margin: 10px 0 0 0; font-size: 14px; color: #666;">Placed at {{.CreatedAt}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; border-bottom: 2px solid #eee;">Product</th>
					<th style="padding: 12px; text-align: center; border-bottom: 2px solid #eee;">Quantity</th>
					<th style="padding: 12px; text-align: right; border-bottom: 2px solid #eee;">Price</th>
					<th style="padding: 12px; text-align: right; border-bottom: 2px solid #eee;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
{{- range .Rows}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">${{.Price}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">${{.Subtotal}}</td>
				</tr>
{{- end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 15px 12px; text-align: right; font-weight: bold;">Total</td>
					<td style="padding: 15px 12px; text-align: right; font-weight: bold; font-size: 18px; color: #4a6cf7;">${{.Total}}</td>
				</tr>
			</tfoot>
		</table>

		<p style="color: #666; font-size: 14px;">This is an automated message, please do not reply.</p>
	</div>
</body>
</html>
`))

// BuildOrderConfirmationBody renders the HTML confirmation for an order event.
// Items without a product name are listed by product ID.
func BuildOrderConfirmationBody(e order.Event) (string, error) {
	data := confirmationData{
		CustomerName: e.CustomerName,
		OrderID:      e.OrderID,
		CreatedAt:    e.CreatedAt,
		Rows:         make([]confirmationRow, len(e.Items)),
		Total:        e.TotalAmount.String(),
	}
	for i, item := range e.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		data.Rows[i] = confirmationRow{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.Price.String(),
			Subtotal: item.Subtotal.String(),
		}
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email: render confirmation: %w", err)
	}
	return buf.String(), nil
}
