package payment

import (
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

type ReceiptItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Receipt is what the buyer is emailed after a successful payment.
type Receipt struct {
	DraftID     string          `json:"draft_id"`
	BuyerName   string          `json:"buyer_name"`
	BuyerEmail  string          `json:"buyer_email"`
	PaymentType string          `json:"payment_type"`
	Items       []ReceiptItem   `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Shipping    decimal.Decimal `json:"shipping"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

func NewReceipt(d order.Draft, paymentType string) Receipt {
	items := make([]ReceiptItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = ReceiptItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return Receipt{
		DraftID:     d.ID,
		BuyerName:   d.Buyer.Name,
		BuyerEmail:  d.Buyer.Email,
		PaymentType: paymentType,
		Items:       items,
		Subtotal:    d.Subtotal,
		Shipping:    d.Shipping,
		Discount:    d.Discount,
		Total:       d.Total,
	}
}
