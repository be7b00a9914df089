package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/order"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func sampleOrder() order.Order {
	return order.Order{
		ID:       "ORDER-1",
		Customer: order.Customer{Name: "Anong", City: "Khon Kaen"},
		Items: []order.Item{
			{ProductID: "p1", Price: decimal.NewFromInt(100), Quantity: 2},
		},
		Totals: order.Totals{Subtotal: decimal.NewFromInt(200), Shipping: decimal.NewFromInt(50), Total: decimal.NewFromInt(250)},
		Status: order.StatusRequested,
	}
}

func TestOrderSubmitted_PublishesEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)
	p.now = func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, p.OrderSubmitted(context.Background(), sampleOrder()))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, Exchange, ch.sent[0].exchange)
	assert.Equal(t, OrderSubmittedRoutingKey, ch.sent[0].key)
	assert.Equal(t, "application/json", ch.sent[0].msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.sent[0].msg.DeliveryMode)

	var env Envelope[OrderSubmittedPayload]
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &env))
	require.NoError(t, env.Validate(OrderSubmittedEvent, 1))
	assert.Equal(t, "ORDER-1", env.PartitionKey)
	assert.Equal(t, Producer, env.Producer)
	assert.NotEmpty(t, env.EventID)
	assert.True(t, env.Payload.Total.Equal(decimal.NewFromInt(250)))
	require.Len(t, env.Payload.Items, 1)
}

func TestOrderStatusChanged_CarriesReason(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)

	o := sampleOrder()
	reason := "out of stock"
	o.Status = order.StatusCancelled
	o.CancelReason = &reason
	require.NoError(t, p.OrderStatusChanged(context.Background(), o, order.StatusRequested))

	var env Envelope[OrderStatusChangedPayload]
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &env))
	assert.Error(t, env.Validate(OrderSubmittedEvent, 1))
	assert.Equal(t, "requested", env.Payload.From)
	assert.Equal(t, "cancelled", env.Payload.To)
	assert.Equal(t, "out of stock", *env.Payload.CancelReason)
}

func TestPublish_WrapsChannelError(t *testing.T) {
	p := NewPublisher(&fakeChannel{err: errors.New("channel closed")})
	err := p.OrderSubmitted(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OrderSubmittedRoutingKey)
}
