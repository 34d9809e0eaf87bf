package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCoupon       = errors.New("invalid coupon code")
	ErrCouponNotApplicable = errors.New("coupon does not apply to any item in the cart")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrMalformedCoupon     = errors.New("malformed coupon")
)

var hundred = decimal.NewFromInt(100)

// Coupon is a percentage discount restricted to one shop's products.
type Coupon struct {
	Code   string          `json:"code"`
	ShopID string          `json:"shop_id"`
	Value  decimal.Decimal `json:"value"`
}

func (c Coupon) validate() error {
	if c.ShopID == "" {
		return fmt.Errorf("%w: missing shop", ErrMalformedCoupon)
	}
	if !c.Value.IsPositive() || c.Value.GreaterThan(hundred) {
		return fmt.Errorf("%w: value %s outside (0, 100]", ErrMalformedCoupon, c.Value)
	}
	return nil
}

// Applied is a coupon resolved against a cart.
type Applied struct {
	Coupon           Coupon          `json:"coupon"`
	EligibleSubtotal decimal.Decimal `json:"eligible_subtotal"`
	Discount         decimal.Decimal `json:"discount"`
}

// Lookup fetches a coupon by code. Implementations return ErrCouponNotFound
// for unknown codes.
type Lookup interface {
	LookupCoupon(ctx context.Context, code string) (Coupon, error)
}

type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve validates code and computes its discount over the items of the
// coupon's shop. Any lookup failure is reported as ErrInvalidCoupon.
func (r *Resolver) Resolve(ctx context.Context, code string, items []cart.LineItem) (*Applied, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidCoupon)
	}

	c, err := r.lookup.LookupCoupon(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
	}
	if c.Code == "" {
		c.Code = code
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
	}

	eligible := ItemsForShop(items, c.ShopID)
	if len(eligible) == 0 {
		return nil, ErrCouponNotApplicable
	}

	subtotal := pricing.Subtotal(eligible)
	return &Applied{
		Coupon:           c,
		EligibleSubtotal: subtotal,
		Discount:         subtotal.Mul(c.Value).Div(hundred),
	}, nil
}

// ItemsForShop returns the items sold by shopID, in cart order.
func ItemsForShop(items []cart.LineItem, shopID string) []cart.LineItem {
	var out []cart.LineItem
	for _, item := range items {
		if item.ShopID == shopID {
			out = append(out, item)
		}
	}
	return out
}
