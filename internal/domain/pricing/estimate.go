package pricing

import (
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(100000)
	FlatCartShipping      = decimal.NewFromInt(5000)
)

// CartEstimate is the cart page summary shown before a delivery method is
// chosen. It is informational only; checkout always prices with Calculate.
type CartEstimate struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	// FreeShippingRemaining is the gap between the subtotal and the free
	// shipping threshold while the flat fee applies.
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// EstimateCart applies the flat cart-page rule: free shipping above the
// threshold, a flat fee otherwise. An empty cart costs nothing.
func EstimateCart(items []cart.LineItem) CartEstimate {
	subtotal := Subtotal(items)
	est := CartEstimate{Subtotal: subtotal, Shipping: decimal.Zero, FreeShippingRemaining: decimal.Zero}
	if len(items) == 0 {
		est.Total = decimal.Zero
		return est
	}
	if !subtotal.GreaterThan(FreeShippingThreshold) {
		est.Shipping = FlatCartShipping
		est.FreeShippingRemaining = FreeShippingThreshold.Sub(subtotal)
	}
	est.Total = subtotal.Add(est.Shipping)
	return est
}
