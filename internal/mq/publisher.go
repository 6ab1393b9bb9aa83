package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher publishes billing events to RabbitMQ.
type Publisher struct {
	conn     *Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher creates a publisher bound to a durable topic exchange.
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// InvoiceCreatedEvent is published after an invoice commit succeeds.
// Publishing never rolls back the commit.
type InvoiceCreatedEvent struct {
	InvoiceID string `json:"invoice_id"`
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	Total     int64  `json:"total"`
	Mode      string `json:"mode"`
	CreatedAt string `json:"created_at"`
}

// PublishInvoiceCreated publishes one invoice-created event.
func (p *Publisher) PublishInvoiceCreated(ctx context.Context, event InvoiceCreatedEvent, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published invoice created event",
		zap.String("routing_key", routingKey),
		zap.String("invoice_id", event.InvoiceID),
		zap.String("room", event.RoomName),
	)
	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
