package mailer

import (
	"fmt"
	"strings"

	"storefront/internal/models"
)

// VerificationCodeHTML renders the body of a verification code email,
// including the expiry notice.
func VerificationCodeHTML(username, code string, ttlSeconds int) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
	<h2 style="color: #333;">Hello, <span style="color: #007BFF;">%s</span>!</h2>
	<p style="font-size: 16px; color: #555;">
		Your verification code is below. It is valid for <strong>%d seconds</strong> only.
	</p>
	<div style="background-color: #f2f2f2; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; color: #333; border-radius: 8px;">
		%s
	</div>
	<p style="font-size: 14px; color: #888; margin-top: 20px;">
		If you did not request this code, no action is needed.
	</p>
</div>`, username, ttlSeconds, code)
}

// OrderConfirmationHTML renders the body of an order confirmation email.
func OrderConfirmationHTML(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, `
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
			</tr>`, item.ProductID, item.Quantity, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
	<h2 style="color: #333;">Your order is confirmed</h2>
	<p>Order <strong>%s</strong> has been placed and is now <strong>%s</strong>.</p>
	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background-color: #f0f0f0;">
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Product</th>
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Quantity</th>
				<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
			</tr>
		</thead>
		<tbody>%s</tbody>
	</table>
	<p style="font-weight: bold;">Total: %.2f</p>
	<p style="color: #555;">Delivery to: %s</p>
</div>`, order.ID, order.Status, rows.String(), order.TotalAmount, order.Address.Address)
}
