package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and available stock")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrAlreadyInCart   = errors.New("product is already in the cart")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrItemNotFound    = errors.New("product is not in the cart")
)

// LineItem is one product in the buyer's cart. Name, price and stock are a
// snapshot of the product taken when the item was added.
type LineItem struct {
	ProductID string          `json:"product_id"`
	ShopID    string          `json:"shop_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
}

// Total is UnitPrice × Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) validate() error {
	if li.ProductID == "" {
		return ErrInvalidProduct
	}
	if li.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if li.Stock < 1 {
		return ErrOutOfStock
	}
	if li.Quantity < 1 || li.Quantity > li.Stock {
		return fmt.Errorf("%w: %d requested, %d in stock", ErrInvalidQuantity, li.Quantity, li.Stock)
	}
	return nil
}

// Cart is an ordered list of line items. Its methods never mutate the
// receiver; they return the next cart.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Find returns the line item for productID.
func (c Cart) Find(productID string) (LineItem, bool) {
	i := c.index(productID)
	if i < 0 {
		return LineItem{}, false
	}
	return c.Items[i], true
}

// Add appends a new line item. A product can only be in the cart once;
// quantity changes go through UpdateQuantity.
func (c Cart) Add(item LineItem) (Cart, error) {
	if err := item.validate(); err != nil {
		return c, err
	}
	if c.index(item.ProductID) >= 0 {
		return c, ErrAlreadyInCart
	}
	items := append(slices.Clone(c.Items), item)
	return Cart{Items: items}, nil
}

// UpdateQuantity sets the quantity of an existing line, bounded by its stock.
func (c Cart) UpdateQuantity(productID string, quantity int) (Cart, error) {
	i := c.index(productID)
	if i < 0 {
		return c, ErrItemNotFound
	}
	updated := c.Items[i]
	updated.Quantity = quantity
	if err := updated.validate(); err != nil {
		return c, err
	}
	items := slices.Clone(c.Items)
	items[i] = updated
	return Cart{Items: items}, nil
}

func (c Cart) Remove(productID string) (Cart, error) {
	i := c.index(productID)
	if i < 0 {
		return c, ErrItemNotFound
	}
	items := slices.Delete(slices.Clone(c.Items), i, i+1)
	return Cart{Items: items}, nil
}

func (c Cart) index(productID string) int {
	return slices.IndexFunc(c.Items, func(li LineItem) bool { return li.ProductID == productID })
}
