package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
	DeliverySameDay  DeliveryMethod = "sameDay"
)

var ErrUnknownDeliveryMethod = errors.New("unknown delivery method")

// shippingRates is the share of the subtotal charged for each tier.
var shippingRates = map[DeliveryMethod]decimal.Decimal{
	DeliveryStandard: decimal.RequireFromString("0.10"),
	DeliveryExpress:  decimal.RequireFromString("0.15"),
	DeliverySameDay:  decimal.RequireFromString("0.20"),
}

// ParseDeliveryMethod maps a method name to a tier. An empty name is standard.
func ParseDeliveryMethod(name string) (DeliveryMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DeliveryStandard, nil
	}
	m := DeliveryMethod(name)
	if _, ok := shippingRates[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDeliveryMethod, name)
	}
	return m, nil
}

// Rate returns the fraction of the subtotal charged as shipping.
func (m DeliveryMethod) Rate() (decimal.Decimal, error) {
	rate, ok := shippingRates[m]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownDeliveryMethod, string(m))
	}
	return rate, nil
}

// Quote is the priced view of a cart. Figures are exact; use Display for
// two-decimal presentation.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Shipping       decimal.Decimal `json:"shipping"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method"`
	// Clamped is set when the discount exceeded subtotal + shipping and the
	// total was raised to zero.
	Clamped bool `json:"clamped,omitempty"`
}

// Subtotal sums quantity × unit price over items.
func Subtotal(items []cart.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	return sum
}

// Calculate prices items for the delivery method with an already resolved
// discount. A negative discount counts as none.
func Calculate(items []cart.LineItem, method DeliveryMethod, discount decimal.Decimal) (Quote, error) {
	rate, err := method.Rate()
	if err != nil {
		return Quote{}, err
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	subtotal := Subtotal(items)
	shipping := subtotal.Mul(rate)
	total := subtotal.Add(shipping).Sub(discount)

	q := Quote{
		Subtotal:       subtotal,
		Shipping:       shipping,
		Discount:       discount,
		Total:          total,
		DeliveryMethod: method,
	}
	if total.IsNegative() {
		q.Total = decimal.Zero
		q.Clamped = true
	}
	return q, nil
}

// DisplayQuote carries the figures of a Quote rounded to 2 decimals.
type DisplayQuote struct {
	Subtotal       string         `json:"subtotal"`
	Shipping       string         `json:"shipping"`
	Discount       string         `json:"discount"`
	Total          string         `json:"total"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Clamped        bool           `json:"clamped,omitempty"`
}

func (q Quote) Display() DisplayQuote {
	return DisplayQuote{
		Subtotal:       q.Subtotal.StringFixed(2),
		Shipping:       q.Shipping.StringFixed(2),
		Discount:       q.Discount.StringFixed(2),
		Total:          q.Total.StringFixed(2),
		DeliveryMethod: q.DeliveryMethod,
		Clamped:        q.Clamped,
	}
}
