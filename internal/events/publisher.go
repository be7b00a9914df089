// Package events publishes order lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wichananm65/cod-storefront/internal/order"
)

const (
	Exchange                     = "storefront.events"
	OrderSubmittedRoutingKey     = "order.submitted.v1"
	OrderStatusChangedRoutingKey = "order.status_changed.v1"
	Producer                     = "cod-storefront"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher implements order.EventPublisher.
type Publisher struct {
	ch  channel
	now func() time.Time
}

func NewPublisher(ch channel) *Publisher {
	return &Publisher{ch: ch, now: func() time.Time { return time.Now().UTC() }}
}

// Dial connects to the broker and declares the events exchange. The returned
// func closes the channel and the connection.
func Dial(url string) (*Publisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare %s: %w", Exchange, err)
	}
	closer := func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return NewPublisher(ch), closer, nil
}

func (p *Publisher) OrderSubmitted(ctx context.Context, o order.Order) error {
	env := newEnvelope(OrderSubmittedEvent, eventVersion, o.ID, p.now(), submittedPayload(o))
	return p.publish(ctx, OrderSubmittedRoutingKey, env)
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o order.Order, from order.Status) error {
	env := newEnvelope(OrderStatusChangedEvent, eventVersion, o.ID, p.now(), OrderStatusChangedPayload{
		OrderID:      o.ID,
		From:         string(from),
		To:           string(o.Status),
		CancelReason: o.CancelReason,
	})
	return p.publish(ctx, OrderStatusChangedRoutingKey, env)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, env any) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(pubCtx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}
