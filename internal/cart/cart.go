// Package cart holds the shopper's cart aggregate and its Redis persistence.
package cart

import (
	"errors"
	"time"
)

var (
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("variation is out of stock")
)

// Item is one (product, variation) line. Price is captured when the item is
// added and becomes the order's unit price at checkout.
type Item struct {
	ProductID      int64   `json:"productId"`
	VariationID    int64   `json:"variationId"`
	Name           string  `json:"name"`
	VariationLabel string  `json:"variationLabel"`
	ImageURL       string  `json:"imageUrl"`
	Price          float64 `json:"price"`
	MaxStock       int     `json:"maxStock"`
	Quantity       int     `json:"quantity"`
}

func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}

func (c *Cart) find(productID, variationID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID && it.VariationID == variationID {
			return i
		}
	}
	return -1
}

// Add merges qty into an existing (product, variation) line or appends a new
// one. The resulting quantity is capped at the item's stock.
func (c *Cart) Add(item Item, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if item.MaxStock < 1 {
		return ErrOutOfStock
	}
	if idx := c.find(item.ProductID, item.VariationID); idx >= 0 {
		existing := &c.Items[idx]
		existing.MaxStock = item.MaxStock
		existing.Quantity = clamp(existing.Quantity+qty, existing.MaxStock)
		return nil
	}
	item.Quantity = clamp(qty, item.MaxStock)
	c.Items = append(c.Items, item)
	return nil
}

// Update changes a line's quantity by delta, clamped to [1, MaxStock].
func (c *Cart) Update(productID, variationID int64, delta int) error {
	idx := c.find(productID, variationID)
	if idx < 0 {
		return ErrItemNotFound
	}
	it := &c.Items[idx]
	it.Quantity = clamp(it.Quantity+delta, it.MaxStock)
	return nil
}

// SetQuantity sets a line's quantity directly, clamped to [1, MaxStock].
func (c *Cart) SetQuantity(productID, variationID int64, qty int) error {
	idx := c.find(productID, variationID)
	if idx < 0 {
		return ErrItemNotFound
	}
	it := &c.Items[idx]
	it.Quantity = clamp(qty, it.MaxStock)
	return nil
}

func (c *Cart) Remove(productID, variationID int64) error {
	idx := c.find(productID, variationID)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.LineTotal()
	}
	return total
}

// Count is the number of units in the cart (the badge number).
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

func clamp(qty, max int) int {
	if max > 0 && qty > max {
		qty = max
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}
