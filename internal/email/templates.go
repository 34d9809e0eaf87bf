package email

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
)

var ErrNoRecipient = errors.New("receipt has no recipient address")

const currency = "UGX"

// BuildReceiptBody builds the HTML body of the payment receipt email
func BuildReceiptBody(transactionID string, r payment.Receipt) string {
	var itemsHTML strings.Builder
	for _, item := range r.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&itemsHTML,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s %s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s %s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			currency, formatAmount(item.UnitPrice),
			currency, formatAmount(lineTotal),
		)
	}

	discountRow := ""
	if r.Discount.IsPositive() {
		discountRow = summaryRow("Discount", "- "+currency+" "+formatAmount(r.Discount))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi %s, we have received your payment.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
			<p style="margin: 10px 0 0 0; font-size: 14px; color: #666;">Paid with %s, reference %s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Amount</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<table style="width: 100%%; border-collapse: collapse;">
			%s%s%s
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total paid</span>
			<span style="font-size: 24px; font-weight: bold; color: #667eea; margin-left: 10px;">%s %s</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This is an automated message. Contact support if you have any questions about your order.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(r.BuyerName),
		html.EscapeString(r.DraftID),
		html.EscapeString(r.PaymentType), html.EscapeString(transactionID),
		itemsHTML.String(),
		summaryRow("Subtotal", currency+" "+formatAmount(r.Subtotal)),
		summaryRow("Shipping", currency+" "+formatAmount(r.Shipping)),
		discountRow,
		currency, formatAmount(r.Total),
	)
}

func summaryRow(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding: 4px 12px; color: #666;">%s</td><td style="padding: 4px 12px; text-align: right;">%s</td></tr>`, label, value)
}

// formatAmount renders d with two decimals and comma separated thousands
func formatAmount(d decimal.Decimal) string {
	str := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	if d.IsNegative() {
		result.WriteString("-")
	}
	remainder := len(whole) % 3
	if remainder > 0 {
		result.WriteString(whole[:remainder])
	}
	for i := remainder; i < len(whole); i += 3 {
		if result.Len() > 0 && !(result.Len() == 1 && d.IsNegative()) {
			result.WriteString(",")
		}
		result.WriteString(whole[i : i+3])
	}
	result.WriteString(".")
	result.WriteString(frac)
	return result.String()
}
