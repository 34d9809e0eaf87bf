package query

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/session"
)

// Money values are rendered with two decimals.

type LineItemReadModel struct {
	ProductID string `json:"product_id"`
	ShopID    string `json:"shop_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
	Stock     int    `json:"stock"`
}

type CouponReadModel struct {
	Code     string `json:"code"`
	ShopID   string `json:"shop_id"`
	Percent  string `json:"percent"`
	Discount string `json:"discount"`
}

type CartReadModel struct {
	BuyerID               string              `json:"buyer_id"`
	Items                 []LineItemReadModel `json:"items"`
	ItemCount             int                 `json:"item_count"`
	Subtotal              string              `json:"subtotal"`
	Shipping              string              `json:"shipping"`
	Total                 string              `json:"total"`
	FreeShippingRemaining string              `json:"free_shipping_remaining"`
	Coupon                *CouponReadModel    `json:"coupon,omitempty"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type WishlistItemReadModel struct {
	ProductID string `json:"product_id"`
	ShopID    string `json:"shop_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	InStock   bool   `json:"in_stock"`
}

type WishlistReadModel struct {
	BuyerID string                  `json:"buyer_id"`
	Items   []WishlistItemReadModel `json:"items"`
}

type QuoteReadModel struct {
	pricing.DisplayQuote
	CouponCode string `json:"coupon_code,omitempty"`
}

type DraftReadModel struct {
	ID              string                `json:"id"`
	Items           []LineItemReadModel   `json:"items"`
	Subtotal        string                `json:"subtotal"`
	Shipping        string                `json:"shipping"`
	Discount        string                `json:"discount"`
	Total           string                `json:"total"`
	CouponCode      string                `json:"coupon_code,omitempty"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time             `json:"created_at"`
}

type PaymentReadModel struct {
	ID            string                `json:"id"`
	DraftID       string                `json:"draft_id"`
	Method        payment.Method        `json:"method"`
	PaymentType   string                `json:"payment_type"`
	Provider      payment.Provider      `json:"provider,omitempty"`
	TransactionID string                `json:"transaction_id,omitempty"`
	Amount        string                `json:"amount"`
	Status        payment.Status        `json:"status"`
	Terminal      bool                  `json:"terminal"`
	FailureReason payment.FailureReason `json:"failure_reason,omitempty"`
	CardType      string                `json:"card_type,omitempty"`
	Last4         string                `json:"last4,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func lineItems(items []cart.LineItem) []LineItemReadModel {
	out := make([]LineItemReadModel, len(items))
	for i, item := range items {
		out[i] = LineItemReadModel{
			ProductID: item.ProductID,
			ShopID:    item.ShopID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Total:     item.Total().StringFixed(2),
			Stock:     item.Stock,
		}
	}
	return out
}

func NewCartReadModel(st session.State) *CartReadModel {
	est := pricing.EstimateCart(st.Cart.Items)
	rm := &CartReadModel{
		BuyerID:               st.BuyerID,
		Items:                 lineItems(st.Cart.Items),
		Subtotal:              est.Subtotal.StringFixed(2),
		Shipping:              est.Shipping.StringFixed(2),
		Total:                 est.Total.StringFixed(2),
		FreeShippingRemaining: est.FreeShippingRemaining.StringFixed(2),
		UpdatedAt:             st.UpdatedAt,
	}
	for _, item := range st.Cart.Items {
		rm.ItemCount += item.Quantity
	}
	if st.Coupon != nil {
		rm.Coupon = &CouponReadModel{
			Code:     st.Coupon.Coupon.Code,
			ShopID:   st.Coupon.Coupon.ShopID,
			Percent:  st.Coupon.Coupon.Value.String(),
			Discount: st.Coupon.Discount.StringFixed(2),
		}
	}
	return rm
}

func NewWishlistReadModel(st session.State) *WishlistReadModel {
	rm := &WishlistReadModel{BuyerID: st.BuyerID, Items: make([]WishlistItemReadModel, len(st.Wishlist.Items))}
	for i, item := range st.Wishlist.Items {
		rm.Items[i] = WishlistItemReadModel{
			ProductID: item.ProductID,
			ShopID:    item.ShopID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			InStock:   item.Stock > 0,
		}
	}
	return rm
}

func NewDraftReadModel(d order.Draft) *DraftReadModel {
	return &DraftReadModel{
		ID:              d.ID,
		Items:           lineItems(d.Items),
		Subtotal:        d.Subtotal.StringFixed(2),
		Shipping:        d.Shipping.StringFixed(2),
		Discount:        d.Discount.StringFixed(2),
		Total:           d.Total.StringFixed(2),
		CouponCode:      d.CouponCode,
		ShippingAddress: d.ShippingAddress,
		CreatedAt:       d.CreatedAt,
	}
}

func NewPaymentReadModel(a *payment.Attempt) *PaymentReadModel {
	return &PaymentReadModel{
		ID:            a.ID,
		DraftID:       a.DraftID,
		Method:        a.Method,
		PaymentType:   a.PaymentType(),
		Provider:      a.Provider,
		TransactionID: a.TransactionID,
		Amount:        a.Amount.StringFixed(2),
		Status:        a.Status,
		Terminal:      a.Status.IsTerminal(),
		FailureReason: a.FailureReason,
		CardType:      a.CardType,
		Last4:         a.Last4,
		Phone:         a.Phone,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
