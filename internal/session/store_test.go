package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/example/ec-storefront/internal/infrastructure/kv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLine(productID string) cart.LineItem {
	return cart.LineItem{ProductID: productID, ShopID: "S1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000), Stock: 3}
}

func newTestApplied(code string, discount int64) coupon.Applied {
	return coupon.Applied{
		Coupon:   coupon.Coupon{Code: code, ShopID: "S1", Value: decimal.NewFromInt(10)},
		Discount: decimal.NewFromInt(discount),
	}
}

// ============================================
// State Tests
// ============================================

func TestState_CartChangeDropsCoupon(t *testing.T) {
	c, err := cart.Cart{}.Add(newTestLine("p1"))
	require.NoError(t, err)
	st := New("buyer-1").WithCart(c).WithCoupon(newTestApplied("SAVE10", 100))
	require.Equal(t, "SAVE10", st.CouponCode())

	c, err = st.Cart.Add(newTestLine("p2"))
	require.NoError(t, err)
	next := st.WithCart(c)

	assert.Nil(t, next.Coupon)
	assert.True(t, next.Discount().IsZero())
	assert.NotNil(t, st.Coupon)
}

func TestState_SecondCouponReplacesFirst(t *testing.T) {
	st := New("buyer-1").
		WithCoupon(newTestApplied("FIRST", 100)).
		WithCoupon(newTestApplied("SECOND", 250))

	assert.Equal(t, "SECOND", st.CouponCode())
	assert.True(t, decimal.NewFromInt(250).Equal(st.Discount()))
}

func TestState_CheckedOutKeepsWishlist(t *testing.T) {
	c, err := cart.Cart{}.Add(newTestLine("p1"))
	require.NoError(t, err)
	w, err := cart.Wishlist{}.Add(cart.WishlistItem{ProductID: "p9"})
	require.NoError(t, err)

	st := New("buyer-1").WithCart(c).WithWishlist(w).WithCoupon(newTestApplied("X", 1)).CheckedOut()

	assert.True(t, st.Cart.IsEmpty())
	assert.Nil(t, st.Coupon)
	assert.True(t, st.Wishlist.Contains("p9"))
}

// ============================================
// Store Tests
// ============================================

func TestStore_LoadFresh(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), time.Hour)

	st, err := store.Load(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", st.BuyerID)
	assert.True(t, st.Cart.IsEmpty())
}

func TestStore_UpdatePersists(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewStore(kv.NewRedisStore(client, "storefront"), 24*time.Hour)
	ctx := context.Background()

	_, err := store.Update(ctx, "buyer-1", func(st State) (State, error) {
		c, err := st.Cart.Add(newTestLine("p1"))
		if err != nil {
			return st, err
		}
		return st.WithCart(c).WithCoupon(newTestApplied("SAVE10", 100)), nil
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("storefront:session:buyer-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("storefront:session:buyer-1"))

	loaded, err := store.Load(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, loaded.Cart.Items, 1)
	assert.Equal(t, "SAVE10", loaded.CouponCode())
	assert.True(t, decimal.NewFromInt(100).Equal(loaded.Discount()))
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStore_UpdateErrorSavesNothing(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), time.Hour)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := store.Update(ctx, "buyer-1", func(st State) (State, error) {
		c, _ := st.Cart.Add(newTestLine("p1"))
		return st.WithCart(c), boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := store.Load(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, loaded.Cart.IsEmpty())
}

func TestStore_ClearCheckout(t *testing.T) {
	store := NewStore(kv.NewMemoryStore(), time.Hour)
	ctx := context.Background()
	_, err := store.Update(ctx, "buyer-1", func(st State) (State, error) {
		c, err := st.Cart.Add(newTestLine("p1"))
		return st.WithCart(c).WithCoupon(newTestApplied("SAVE10", 100)), err
	})
	require.NoError(t, err)

	require.NoError(t, store.ClearCheckout(ctx, "buyer-1"))

	loaded, err := store.Load(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, loaded.Cart.IsEmpty())
	assert.Nil(t, loaded.Coupon)
}
