package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/coupon"
	couponmocks "github.com/example/ec-storefront/internal/domain/coupon/mocks"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/draft"
	"github.com/example/ec-storefront/internal/infrastructure/kv"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	gatewaymocks "github.com/example/ec-storefront/internal/infrastructure/storefront/mocks"
	"github.com/example/ec-storefront/internal/session"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuyer = "buyer-1"

type testDeps struct {
	sessions *session.Store
	drafts   *draft.Slot
	lookup   *couponmocks.MockLookup
	gateway  *gatewaymocks.MockGateway
}

func newTestHandler(t *testing.T) (*Handler, *testDeps) {
	t.Helper()
	kvStore := kv.NewMemoryStore()
	deps := &testDeps{
		sessions: session.NewStore(kvStore, time.Hour),
		drafts:   draft.NewSlot(kvStore, time.Hour),
		lookup: couponmocks.NewMockLookup(
			coupon.Coupon{Code: "SAVE10", ShopID: "S1", Value: decimal.NewFromInt(10)},
			coupon.Coupon{Code: "HALF", ShopID: "S2", Value: decimal.NewFromInt(50)},
		),
		gateway: gatewaymocks.NewMockGateway(),
	}
	payments := dispatcher.New(
		payment.NewService(store.NewEventStore(nil)),
		deps.gateway, deps.drafts, deps.sessions,
		dispatcher.Config{CardProcessingDelay: time.Millisecond, PollInterval: time.Millisecond, MaxPolls: 3},
		zerolog.Nop(),
	)
	t.Cleanup(payments.Close)

	h := NewHandler(deps.sessions, coupon.NewResolver(deps.lookup), deps.drafts, payments, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h, deps
}

func kettle(qty int) cart.LineItem {
	return cart.LineItem{ProductID: "p1", ShopID: "S1", Name: "Kettle", Quantity: qty, UnitPrice: decimal.NewFromInt(10000), Stock: 5}
}

func mug(qty int) cart.LineItem {
	return cart.LineItem{ProductID: "p2", ShopID: "S2", Name: "Mug", Quantity: qty, UnitPrice: decimal.NewFromInt(5000), Stock: 10}
}

func validAddress() order.ShippingAddress {
	return order.ShippingAddress{Address1: "Plot 1", Address2: "Block B", Country: "UG", City: "KLA"}
}

func testBuyerInfo() order.Buyer {
	return order.Buyer{ID: testBuyer, Name: "Amina", Email: "amina@example.com"}
}

// ============================================
// Cart Tests
// ============================================

func TestHandler_AddToCart_Success(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	st, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})

	require.NoError(t, err)
	require.Len(t, st.Cart.Items, 1)
	assert.Equal(t, 2, st.Cart.Items[0].Quantity)

	saved, err := deps.sessions.Load(ctx, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, st.Cart, saved.Cart)
}

func TestHandler_AddToCart_Duplicate(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(1)})
	require.NoError(t, err)

	_, err = h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(1)})
	assert.ErrorIs(t, err, cart.ErrAlreadyInCart)
}

func TestHandler_UpdateCartQuantity(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(1)})
	require.NoError(t, err)

	st, err := h.UpdateCartQuantity(ctx, UpdateCartQuantity{BuyerID: testBuyer, ProductID: "p1", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, st.Cart.Items[0].Quantity)

	_, err = h.UpdateCartQuantity(ctx, UpdateCartQuantity{BuyerID: testBuyer, ProductID: "p1", Quantity: 6})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestHandler_RemoveFromCart_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.RemoveFromCart(context.Background(), RemoveFromCart{BuyerID: testBuyer, ProductID: "missing"})

	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestHandler_CartChangeDropsCoupon(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})
	require.NoError(t, err)

	_, err = h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: mug(1)})
	require.NoError(t, err)

	st, err := deps.sessions.Load(ctx, testBuyer)
	require.NoError(t, err)
	assert.Nil(t, st.Coupon)
}

func TestHandler_ClearCart(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)

	st, err := h.ClearCart(ctx, ClearCart{BuyerID: testBuyer})
	require.NoError(t, err)
	assert.True(t, st.Cart.IsEmpty())
}

// ============================================
// Wishlist Tests
// ============================================

func TestHandler_Wishlist_MoveToCart(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	item := cart.WishlistItem{ProductID: "p1", ShopID: "S1", Name: "Kettle", UnitPrice: decimal.NewFromInt(10000), Stock: 5}
	st, err := h.AddToWishlist(ctx, AddToWishlist{BuyerID: testBuyer, Item: item})
	require.NoError(t, err)
	assert.True(t, st.Wishlist.Contains("p1"))

	st, err = h.MoveWishlistItemToCart(ctx, MoveWishlistItemToCart{BuyerID: testBuyer, ProductID: "p1"})
	require.NoError(t, err)
	assert.False(t, st.Wishlist.Contains("p1"))
	line, ok := st.Cart.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}

func TestHandler_RemoveFromWishlist_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.RemoveFromWishlist(context.Background(), RemoveFromWishlist{BuyerID: testBuyer, ProductID: "p1"})

	assert.ErrorIs(t, err, cart.ErrNotInWishlist)
}

// ============================================
// Coupon Tests
// ============================================

func TestHandler_ApplyCoupon_Success(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)

	applied, err := h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(applied.Discount))

	st, err := deps.sessions.Load(ctx, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", st.CouponCode())
}

func TestHandler_ApplyCoupon_ReplacesPrevious(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: mug(2)})
	require.NoError(t, err)

	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})
	require.NoError(t, err)
	applied, err := h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "HALF"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(applied.Discount))

	st, err := deps.sessions.Load(ctx, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, "HALF", st.CouponCode())
}

func TestHandler_ApplyCoupon_FailureKeepsPrevious(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})
	require.NoError(t, err)

	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "BOGUS"})
	assert.ErrorIs(t, err, coupon.ErrInvalidCoupon)

	// HALF is for a shop with nothing in the cart
	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "HALF"})
	assert.ErrorIs(t, err, coupon.ErrCouponNotApplicable)

	st, err := deps.sessions.Load(ctx, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", st.CouponCode())
}

func TestHandler_ApplyCoupon_LookupFailure(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()
	deps.lookup.LookupErr = errors.New("connection refused")

	_, err := h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})

	assert.ErrorIs(t, err, coupon.ErrInvalidCoupon)
}

func TestHandler_RemoveCoupon(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})
	require.NoError(t, err)

	st, err := h.RemoveCoupon(ctx, RemoveCoupon{BuyerID: testBuyer})
	require.NoError(t, err)
	assert.Nil(t, st.Coupon)
}

// ============================================
// Shipping Tests
// ============================================

func TestHandler_SubmitShipping_WritesDraft(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.ApplyCoupon(ctx, ApplyCoupon{BuyerID: testBuyer, Code: "SAVE10"})
	require.NoError(t, err)

	d, err := h.SubmitShipping(ctx, SubmitShipping{Buyer: testBuyerInfo(), Address: validAddress(), DeliveryMethod: "express"})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(d.Subtotal))
	assert.True(t, decimal.NewFromInt(3000).Equal(d.Shipping))
	assert.True(t, decimal.NewFromInt(2000).Equal(d.Discount))
	assert.True(t, decimal.NewFromInt(21000).Equal(d.Total))
	assert.Equal(t, "SAVE10", d.CouponCode)
	assert.Equal(t, pricing.DeliveryExpress, d.ShippingAddress.DeliveryMethod)

	stored, found, err := deps.drafts.Read(ctx, testBuyer)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, d.ID, stored.ID)
}

func TestHandler_SubmitShipping_DefaultsToStandard(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)

	d, err := h.SubmitShipping(ctx, SubmitShipping{Buyer: testBuyerInfo(), Address: validAddress()})

	require.NoError(t, err)
	assert.Equal(t, pricing.DeliveryStandard, d.ShippingAddress.DeliveryMethod)
	assert.True(t, decimal.NewFromInt(22000).Equal(d.Total))
}

func TestHandler_SubmitShipping_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		seed    bool
		address order.ShippingAddress
		method  string
		wantErr error
	}{
		{"empty cart", false, validAddress(), "standard", order.ErrEmptyOrder},
		{"missing address2", true, order.ShippingAddress{Address1: "Plot 1", Country: "UG", City: "KLA"}, "standard", order.ErrIncompleteAddress},
		{"unknown method", true, validAddress(), "drone", pricing.ErrUnknownDeliveryMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, deps := newTestHandler(t)
			ctx := context.Background()
			if tt.seed {
				_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(1)})
				require.NoError(t, err)
			}

			_, err := h.SubmitShipping(ctx, SubmitShipping{Buyer: testBuyerInfo(), Address: tt.address, DeliveryMethod: tt.method})

			assert.ErrorIs(t, err, tt.wantErr)
			_, found, err := deps.drafts.Read(ctx, testBuyer)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

// ============================================
// Payment Tests
// ============================================

func TestHandler_PayByCard_NoDraft(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.PayByCard(context.Background(), PayByCard{
		BuyerID: testBuyer,
		Card:    payment.Card{Number: "4242424242424242", Expiry: "12/30", CVC: "123", Name: "Amina Nakato"},
	})

	assert.ErrorIs(t, err, dispatcher.ErrNoDraft)
}

func TestHandler_PayByCard_Success(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(2)})
	require.NoError(t, err)
	_, err = h.SubmitShipping(ctx, SubmitShipping{Buyer: testBuyerInfo(), Address: validAddress()})
	require.NoError(t, err)

	attempt, err := h.PayByCard(ctx, PayByCard{
		BuyerID: testBuyer,
		Card:    payment.Card{Number: "4242424242424242", Expiry: "12/30", CVC: "123", Name: "Amina Nakato"},
	})

	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, attempt.Status)
	assert.Len(t, deps.gateway.SubmittedOrders(), 1)
}

func TestHandler_CancelPayment_OtherBuyer(t *testing.T) {
	h, deps := newTestHandler(t)
	ctx := context.Background()
	deps.gateway.ScriptStatuses(gatewaymocks.StatusReply{Status: payment.ProviderPending})

	_, err := h.AddToCart(ctx, AddToCart{BuyerID: testBuyer, Item: kettle(1)})
	require.NoError(t, err)
	_, err = h.SubmitShipping(ctx, SubmitShipping{Buyer: testBuyerInfo(), Address: validAddress()})
	require.NoError(t, err)

	attempt, err := h.PayByMobileMoney(ctx, PayByMobileMoney{
		BuyerID:     testBuyer,
		MobileMoney: dispatcher.MobileMoney{Phone: "0772123456", Provider: "mtn"},
	})
	require.NoError(t, err)

	_, err = h.CancelPayment(ctx, CancelPayment{BuyerID: "someone-else", AttemptID: attempt.ID})
	assert.ErrorIs(t, err, payment.ErrAttemptNotFound)

	_, err = h.CancelPayment(ctx, CancelPayment{BuyerID: testBuyer, AttemptID: attempt.ID})
	require.NoError(t, err)
}
