package events

import (
	"github.com/shopspring/decimal"
	"github.com/wichananm65/cod-storefront/internal/order"
)

const (
	OrderSubmittedEvent     = "OrderSubmitted"
	OrderStatusChangedEvent = "OrderStatusChanged"
	eventVersion            = 1
)

type OrderLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderSubmittedPayload struct {
	OrderID  string          `json:"orderId"`
	City     string          `json:"city,omitempty"`
	Items    []OrderLine     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID      string  `json:"orderId"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	CancelReason *string `json:"cancelReason,omitempty"`
}

func submittedPayload(o order.Order) OrderSubmittedPayload {
	items := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderSubmittedPayload{
		OrderID:  o.ID,
		City:     o.Customer.City,
		Items:    items,
		Subtotal: o.Totals.Subtotal,
		Shipping: o.Totals.Shipping,
		Total:    o.Totals.Total,
	}
}
