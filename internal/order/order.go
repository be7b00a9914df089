// Package order turns a session's cart into a persisted cash-on-delivery
// order and drives its fulfillment status.
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/cart"
)

// Customer is the delivery form filled in at checkout.
type Customer struct {
	Name           string `json:"name" bson:"name"`
	Phone          string `json:"phone" bson:"phone"`
	SecondaryPhone string `json:"secondaryPhone,omitempty" bson:"secondary_phone,omitempty"`
	Address        string `json:"address" bson:"address"`
	Floor          string `json:"floor,omitempty" bson:"floor,omitempty"`
	City           string `json:"city" bson:"city"`
	Email          string `json:"email,omitempty" bson:"email,omitempty"`
	Notes          string `json:"notes,omitempty" bson:"notes,omitempty"`
}

func (c Customer) normalized() Customer {
	return Customer{
		Name:           strings.TrimSpace(c.Name),
		Phone:          strings.TrimSpace(c.Phone),
		SecondaryPhone: strings.TrimSpace(c.SecondaryPhone),
		Address:        strings.TrimSpace(c.Address),
		Floor:          strings.TrimSpace(c.Floor),
		City:           strings.TrimSpace(c.City),
		Email:          strings.TrimSpace(c.Email),
		Notes:          strings.TrimSpace(c.Notes),
	}
}

// Validate returns the missing required fields of c, or nil.
func (c Customer) Validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(c.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if strings.TrimSpace(c.Address) == "" {
		fields["address"] = "address is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Item is a copy of a cart line taken at submission. Later catalog edits
// never reach it.
type Item struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Order struct {
	ID           string    `json:"id"`
	Customer     Customer  `json:"customer"`
	Items        []Item    `json:"items"`
	Totals       Totals    `json:"totals"`
	Status       Status    `json:"status"`
	CancelReason *string   `json:"cancelReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewID returns a collision resistant order id.
func NewID() string {
	return "ORDER-" + strings.ToUpper(uuid.NewString())
}

func snapshot(c cart.Cart) []Item {
	lines := c.Lines()
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		}
	}
	return items
}

func totalsOf(c cart.Cart, shipping decimal.Decimal) Totals {
	sub := c.Subtotal()
	return Totals{Subtotal: sub, Shipping: shipping, Total: sub.Add(shipping)}
}

// matches reports whether q is a case-insensitive substring of the order id or
// customer name, or a substring of the phone.
func (o Order) matches(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	lower := strings.ToLower(q)
	return strings.Contains(strings.ToLower(o.ID), lower) ||
		strings.Contains(strings.ToLower(o.Customer.Name), lower) ||
		strings.Contains(o.Customer.Phone, q)
}
