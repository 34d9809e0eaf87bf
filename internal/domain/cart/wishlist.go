package cart

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

var ErrNotInWishlist = errors.New("product is not in the wishlist")

type WishlistItem struct {
	ProductID string          `json:"product_id"`
	ShopID    string          `json:"shop_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
}

// Wishlist keeps products the buyer saved for later.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

func (w Wishlist) Contains(productID string) bool {
	return w.index(productID) >= 0
}

// Add is idempotent: saving a product twice keeps one entry.
func (w Wishlist) Add(item WishlistItem) (Wishlist, error) {
	if item.ProductID == "" {
		return w, ErrInvalidProduct
	}
	if w.Contains(item.ProductID) {
		return w, nil
	}
	return Wishlist{Items: append(slices.Clone(w.Items), item)}, nil
}

func (w Wishlist) Remove(productID string) (Wishlist, error) {
	i := w.index(productID)
	if i < 0 {
		return w, ErrNotInWishlist
	}
	return Wishlist{Items: slices.Delete(slices.Clone(w.Items), i, i+1)}, nil
}

// MoveToCart removes the product from the wishlist and adds it to c with
// quantity 1. Neither side changes when the cart rejects the item.
func (w Wishlist) MoveToCart(productID string, c Cart) (Wishlist, Cart, error) {
	i := w.index(productID)
	if i < 0 {
		return w, c, ErrNotInWishlist
	}
	item := w.Items[i]
	next, err := c.Add(LineItem{
		ProductID: item.ProductID,
		ShopID:    item.ShopID,
		Name:      item.Name,
		Quantity:  1,
		UnitPrice: item.UnitPrice,
		Stock:     item.Stock,
	})
	if err != nil {
		return w, c, err
	}
	rest, _ := w.Remove(productID)
	return rest, next, nil
}

func (w Wishlist) index(productID string) int {
	return slices.IndexFunc(w.Items, func(it WishlistItem) bool { return it.ProductID == productID })
}
