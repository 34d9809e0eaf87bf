package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Address defaults the shipping form starts with.
const (
	DefaultCountry = "UG"
	DefaultCity    = "KLA"
)

var (
	ErrIncompleteAddress = errors.New("shipping address is incomplete")
	ErrEmptyOrder        = errors.New("order must have at least one item")
)

type ShippingAddress struct {
	Address1            string                 `json:"address1"`
	Address2            string                 `json:"address2"`
	Country             string                 `json:"country"`
	City                string                 `json:"city"`
	DeliveryMethod      pricing.DeliveryMethod `json:"deliveryMethod"`
	SpecialInstructions string                 `json:"specialInstructions,omitempty"`
}

// Validate requires every address line, country and city. The error names
// each missing field.
func (a ShippingAddress) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"address1", a.Address1},
		{"address2", a.Address2},
		{"country", a.Country},
		{"city", a.City},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	return nil
}

type Buyer struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phoneNumber,omitempty"`
}

// Draft is the priced order handed from the shipping step to payment.
type Draft struct {
	ID              string          `json:"id"`
	Items           []cart.LineItem `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Buyer           Buyer           `json:"buyer"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewDraft snapshots the quote for items. The address delivery method is
// taken from the quote so the two cannot disagree.
func NewDraft(buyer Buyer, items []cart.LineItem, quote pricing.Quote, couponCode string, addr ShippingAddress, now time.Time) (Draft, error) {
	if len(items) == 0 {
		return Draft{}, ErrEmptyOrder
	}
	addr.DeliveryMethod = quote.DeliveryMethod
	if err := addr.Validate(); err != nil {
		return Draft{}, err
	}
	return Draft{
		ID:              uuid.New().String(),
		Items:           append([]cart.LineItem(nil), items...),
		Subtotal:        quote.Subtotal,
		Shipping:        quote.Shipping,
		Discount:        quote.Discount,
		Total:           quote.Total,
		CouponCode:      couponCode,
		ShippingAddress: addr,
		Buyer:           buyer,
		CreatedAt:       now,
	}, nil
}
