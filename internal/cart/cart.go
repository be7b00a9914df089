// Package cart holds the shopper's working set of line items and persists it
// in the client-scoped key-value store.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/product"
)

// Line is one product in the cart. Title, price and image are copied from the
// product when the line is first created.
type Line struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Total is price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps at most one line per product, each with a quantity of at least
// one. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

// Add increments the line for p by qty, creating it when absent.
func (c *Cart) Add(p product.Product, qty int) error {
	if qty < 1 {
		return apperror.Invalid("quantity", "quantity must be a positive integer")
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	return nil
}

// SetQuantity replaces the quantity of a line. Zero removes it and an unknown
// product id is ignored.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return apperror.Invalid("quantity", "quantity must not be negative")
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = qty
	}
	return nil
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// Decode reads a persisted cart. Anything unreadable yields an empty cart;
// lines with no product id or a non-positive quantity are dropped and
// duplicate product ids are merged.
func Decode(raw []byte) Cart {
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return Cart{}
	}
	var c Cart
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i := c.index(l.ProductID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}
