package session

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/shopspring/decimal"
)

// State is everything the storefront remembers about a buyer between
// requests. Methods return the next state and leave the receiver alone.
type State struct {
	BuyerID   string          `json:"buyer_id"`
	Cart      cart.Cart       `json:"cart"`
	Wishlist  cart.Wishlist   `json:"wishlist"`
	Coupon    *coupon.Applied `json:"coupon,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func New(buyerID string) State {
	return State{BuyerID: buyerID}
}

// WithCart replaces the cart. A coupon was priced against the old cart, so
// it is dropped.
func (s State) WithCart(c cart.Cart) State {
	s.Cart = c
	s.Coupon = nil
	return s
}

func (s State) WithWishlist(w cart.Wishlist) State {
	s.Wishlist = w
	return s
}

// WithCoupon replaces any previously applied coupon.
func (s State) WithCoupon(applied coupon.Applied) State {
	s.Coupon = &applied
	return s
}

func (s State) WithoutCoupon() State {
	s.Coupon = nil
	return s
}

// CheckedOut is the state after a successful payment: empty cart, no coupon.
// The wishlist is kept.
func (s State) CheckedOut() State {
	s.Cart = cart.Cart{}
	s.Coupon = nil
	return s
}

// Discount is the applied coupon's discount, zero without one.
func (s State) Discount() decimal.Decimal {
	if s.Coupon == nil {
		return decimal.Zero
	}
	return s.Coupon.Discount
}

func (s State) CouponCode() string {
	if s.Coupon == nil {
		return ""
	}
	return s.Coupon.Coupon.Code
}
