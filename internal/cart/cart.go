// Package cart holds the shopper's in-memory basket. A Cart is owned by a
// single goroutine; callers sharing one must serialize access themselves.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
)

// Item is one cart entry. Quantity is always positive.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// LineTotal is the unrounded price of the entry.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of items, unique by product id.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID uint) int {
	for i, it := range c.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart.
func (c *Cart) Add(p models.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// SetQuantity changes the quantity of productID by delta. The entry is
// removed once its quantity drops to zero or below. Unknown ids are ignored.
func (c *Cart) SetQuantity(productID uint, delta int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity + delta
	if q <= 0 {
		c.removeAt(i)
		return
	}
	c.items[i].Quantity = q
}

func (c *Cart) Remove(productID uint) {
	if i := c.index(productID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// Total is the exact sum of line totals. Round only for display.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Lines converts the cart into order placement lines.
func (c *Cart) Lines() []checkout.LineRequest {
	lines := make([]checkout.LineRequest, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, checkout.LineRequest{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return lines
}

func (c *Cart) Clear() {
	c.items = nil
}
