// Package notify sends transactional e-mail to customers.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wichananm65/cod-storefront/internal/order"
)

type sendFunc func(ctx context.Context, msg *mail.SGMailV3) (status int, body string, err error)

// Mailer implements order.Notifier on top of SendGrid.
type Mailer struct {
	from *mail.Email
	send sendFunc
}

func NewSendGrid(apiKey, sender, storeName string) *Mailer {
	client := sendgrid.NewSendClient(apiKey)
	return &Mailer{
		from: mail.NewEmail(storeName, sender),
		send: func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, msg)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<strong>Dear {{.Customer.Name}},</strong><br><br>
Thank you for your order <strong>{{.ID}}</strong>. We will deliver it to {{.Customer.Address}}{{if .Customer.City}}, {{.Customer.City}}{{end}}.<br><br>
<ul>{{range .Items}}<li>{{.Quantity}} x {{.Title}} ({{.Price.StringFixed 2}})</li>{{end}}</ul>
Subtotal: {{.Totals.Subtotal.StringFixed 2}}<br>
Shipping: {{.Totals.Shipping.StringFixed 2}}<br>
<strong>Total due on delivery: {{.Totals.Total.StringFixed 2}}</strong><br><br>
Payment method: cash on delivery.`))

// OrderConfirmation mails the order summary to the customer. Orders without
// an e-mail address are skipped.
func (m *Mailer) OrderConfirmation(ctx context.Context, o order.Order) error {
	if o.Customer.Email == "" {
		return nil
	}

	var html bytes.Buffer
	if err := confirmationTmpl.Execute(&html, o); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	plain := fmt.Sprintf("Thank you for your order %s. Total due on delivery: %s.", o.ID, o.Totals.Total.StringFixed(2))

	to := mail.NewEmail(o.Customer.Name, o.Customer.Email)
	msg := mail.NewSingleEmail(m.from, "Order Confirmation "+o.ID, to, plain, html.String())

	status, body, err := m.send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("send confirmation: sendgrid status %d: %s", status, body)
	}
	return nil
}
