package notify

import (
	"context"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/order"
)

func testOrder(email string) order.Order {
	return order.Order{
		ID:       "ORDER-1",
		Customer: order.Customer{Name: "Anong <script>", Address: "1 Road", City: "Hat Yai", Email: email},
		Items:    []order.Item{{Title: "Vase", Price: decimal.RequireFromString("89.99"), Quantity: 1}},
		Totals:   order.Totals{Subtotal: decimal.RequireFromString("89.99"), Shipping: decimal.NewFromInt(50), Total: decimal.RequireFromString("139.99")},
	}
}

func TestOrderConfirmation_RendersAndSends(t *testing.T) {
	var got *mail.SGMailV3
	m := &Mailer{
		from: mail.NewEmail("Store", "shop@example.com"),
		send: func(_ context.Context, msg *mail.SGMailV3) (int, string, error) {
			got = msg
			return 202, "", nil
		},
	}

	require.NoError(t, m.OrderConfirmation(context.Background(), testOrder("anong@example.com")))
	require.NotNil(t, got)
	assert.Equal(t, "Order Confirmation ORDER-1", got.Subject)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "anong@example.com", got.Personalizations[0].To[0].Address)

	var html string
	for _, c := range got.Content {
		if c.Type == "text/html" {
			html = c.Value
		}
	}
	assert.Contains(t, html, "139.99")
	assert.Contains(t, html, "cash on delivery")
	assert.NotContains(t, html, "<script>")
}

func TestOrderConfirmation_SkipsWithoutEmail(t *testing.T) {
	m := &Mailer{send: func(context.Context, *mail.SGMailV3) (int, string, error) {
		t.Fatal("send must not be called")
		return 0, "", nil
	}}
	assert.NoError(t, m.OrderConfirmation(context.Background(), testOrder("")))
}

func TestOrderConfirmation_RejectedByProvider(t *testing.T) {
	m := &Mailer{
		from: mail.NewEmail("Store", "shop@example.com"),
		send: func(context.Context, *mail.SGMailV3) (int, string, error) {
			return 401, `{"errors":[{"message":"bad key"}]}`, nil
		},
	}
	err := m.OrderConfirmation(context.Background(), testOrder("a@example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
