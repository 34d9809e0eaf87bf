package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWishlistItem(productID string, stock int) WishlistItem {
	return WishlistItem{
		ProductID: productID,
		ShopID:    "shop-1",
		Name:      "Saved " + productID,
		UnitPrice: decimal.NewFromInt(5000),
		Stock:     stock,
	}
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	w, err := Wishlist{}.Add(newTestWishlistItem("p1", 2))
	require.NoError(t, err)
	w, err = w.Add(newTestWishlistItem("p1", 2))
	require.NoError(t, err)

	assert.Len(t, w.Items, 1)
	assert.True(t, w.Contains("p1"))

	_, err = w.Add(WishlistItem{})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestWishlist_Remove(t *testing.T) {
	w, err := Wishlist{}.Add(newTestWishlistItem("p1", 2))
	require.NoError(t, err)

	w, err = w.Remove("p1")
	require.NoError(t, err)
	assert.False(t, w.Contains("p1"))

	_, err = w.Remove("p1")
	assert.ErrorIs(t, err, ErrNotInWishlist)
}

func TestWishlist_MoveToCart(t *testing.T) {
	w, err := Wishlist{}.Add(newTestWishlistItem("p1", 2))
	require.NoError(t, err)

	w, c, err := w.MoveToCart("p1", Cart{})
	require.NoError(t, err)

	assert.False(t, w.Contains("p1"))
	item, ok := c.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "shop-1", item.ShopID)
}

func TestWishlist_MoveToCart_RejectedKeepsBoth(t *testing.T) {
	w, err := Wishlist{}.Add(newTestWishlistItem("p1", 0))
	require.NoError(t, err)

	nextW, nextC, err := w.MoveToCart("p1", Cart{})
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.True(t, nextW.Contains("p1"))
	assert.True(t, nextC.IsEmpty())

	_, _, err = w.MoveToCart("missing", Cart{})
	assert.ErrorIs(t, err, ErrNotInWishlist)
}
