package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinItems is the minimum number of units a cart must hold before
// checkout is allowed.
const DefaultMinItems = 8

// Product is the slice of catalog data the cart needs. Prices are captured
// when the product is added; the cart never re-reads the catalog.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

// Item is a product with its selected quantity. Quantity is always >= 1;
// an item whose quantity would drop to zero is removed instead.
type Item struct {
	Product  Product
	Quantity int
}

// Cart tracks one browsing session's selection. It is confined to a single
// session and is not safe for concurrent use. Items keep insertion order
// for display stability.
type Cart struct {
	items    []Item
	minItems int
}

// New creates an empty cart with the given minimum-order threshold.
func New(minItems int) *Cart {
	if minItems <= 0 {
		minItems = DefaultMinItems
	}
	return &Cart{minItems: minItems}
}

// AddItem increments the quantity for the product, inserting a new line at
// quantity 1 when the product is not yet in the cart.
func (c *Cart) AddItem(p Product) {
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// RemoveItem decrements the quantity for the product, dropping the line
// when it reaches zero. Removing a product that is not in the cart is a
// no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].Product.ID != productID {
			continue
		}
		if c.items[i].Quantity <= 1 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity--
		}
		return
	}
}

// GetQuantity returns the current quantity for the product, or 0.
func (c *Cart) GetQuantity(productID uuid.UUID) int {
	for _, item := range c.items {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of quantity times unit price over all lines.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// IsMinimumMet reports whether the cart holds enough units to order.
func (c *Cart) IsMinimumMet() bool {
	return c.TotalItems() >= c.minItems
}

// Clear empties the cart. Called after a successful order submission.
func (c *Cart) Clear() {
	c.items = nil
}
