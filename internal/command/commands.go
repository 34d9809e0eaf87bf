package command

import (
	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
)

// Cart Commands
type AddToCart struct {
	BuyerID string        `json:"buyer_id"`
	Item    cart.LineItem `json:"item"`
}

type UpdateCartQuantity struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	BuyerID string `json:"buyer_id"`
}

// Wishlist Commands
type AddToWishlist struct {
	BuyerID string            `json:"buyer_id"`
	Item    cart.WishlistItem `json:"item"`
}

type RemoveFromWishlist struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
}

type MoveWishlistItemToCart struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
}

// Checkout Commands
type ApplyCoupon struct {
	BuyerID string `json:"buyer_id"`
	Code    string `json:"code"`
}

type RemoveCoupon struct {
	BuyerID string `json:"buyer_id"`
}

type SubmitShipping struct {
	Buyer          order.Buyer           `json:"buyer"`
	Address        order.ShippingAddress `json:"address"`
	DeliveryMethod string                `json:"delivery_method"`
}

// Payment Commands
type PayByCard struct {
	BuyerID string       `json:"buyer_id"`
	Card    payment.Card `json:"card"`
}

type PayByMobileMoney struct {
	BuyerID     string                 `json:"buyer_id"`
	MobileMoney dispatcher.MobileMoney `json:"mobile_money"`
}

type CancelPayment struct {
	BuyerID   string `json:"buyer_id"`
	AttemptID string `json:"attempt_id"`
}
