// Package events publishes order lifecycle events to RabbitMQ so
// downstream consumers (fulfilment dashboards, analytics) can react
// without polling. The publisher is optional: a nil *Publisher is safe
// to call and does nothing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Ags961/Arambam-eCommerce/models"
)

const publishTimeout = 5 * time.Second

type Publisher struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
}

type orderEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewPublisher connects, opens a channel and declares the durable
// order-events queue.
func NewPublisher(rabbitURL, queueName string) (*Publisher, error) {
	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}
	return &Publisher{conn: conn, ch: ch, queueName: queueName}, nil
}

// OrderPlaced announces a newly created order. Publishing is
// fire-and-forget; callers never wait on the broker.
func (p *Publisher) OrderPlaced(order models.Order) {
	go p.publish("order.placed", order)
}

// OrderStatusChanged announces an admin status update.
func (p *Publisher) OrderStatusChanged(orderID string, status models.OrderStatus) {
	go p.publish("order.status", map[string]interface{}{
		"orderId": orderID,
		"status":  status,
	})
}

func (p *Publisher) publish(eventType string, data interface{}) {
	if p == nil || p.ch == nil {
		return
	}

	body, err := json.Marshal(orderEvent{Type: eventType, Data: data, Timestamp: time.Now()})
	if err != nil {
		log.Printf("events: failed to marshal %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		log.Printf("events: failed to publish %s: %v", eventType, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
