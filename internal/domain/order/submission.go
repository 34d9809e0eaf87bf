package order

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PaymentInfo describes how the buyer paid, as sent to order creation.
type PaymentInfo struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Last4       string `json:"last4,omitempty"`
	CardType    string `json:"cardType,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type SubmissionItem struct {
	ProductID     string      `json:"_id"`
	ShopID        string      `json:"shopId"`
	Name          string      `json:"name"`
	Qty           int         `json:"qty"`
	DiscountPrice json.Number `json:"discountPrice"`
}

// Submission is the order-creation request body of the shop backend.
type Submission struct {
	Cart            []SubmissionItem `json:"cart"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	User            Buyer            `json:"user"`
	TotalPrice      json.Number      `json:"totalPrice"`
	SubTotalPrice   json.Number      `json:"subTotalPrice"`
	Shipping        json.Number      `json:"shipping"`
	DiscountPrice   json.Number      `json:"discountPrice"`
	PaymentInfo     PaymentInfo      `json:"paymentInfo"`
}

// NewSubmission builds the order-creation body for a draft. Amounts are sent
// as JSON numbers rounded to 2 decimals.
func NewSubmission(d Draft, info PaymentInfo) Submission {
	items := make([]SubmissionItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = SubmissionItem{
			ProductID:     item.ProductID,
			ShopID:        item.ShopID,
			Name:          item.Name,
			Qty:           item.Quantity,
			DiscountPrice: amount(item.UnitPrice),
		}
	}
	return Submission{
		Cart:            items,
		ShippingAddress: d.ShippingAddress,
		User:            d.Buyer,
		TotalPrice:      amount(d.Total),
		SubTotalPrice:   amount(d.Subtotal),
		Shipping:        amount(d.Shipping),
		DiscountPrice:   amount(d.Discount),
		PaymentInfo:     info,
	}
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
