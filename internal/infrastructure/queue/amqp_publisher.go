package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mechshop/service-api/internal/core/ports"
)

// DefaultExchange receives ticket activity under routing keys such as
// "ticket.mechanic.added".
const DefaultExchange = "mechshop.tickets"

// AMQPPublisher publishes ticket activity to a durable topic exchange.
// The connection is re-dialled lazily after the broker drops it.
type AMQPPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials url and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &AMQPPublisher{url: url, exchange: exchange}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect must be called with mu held.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// Publish sends a as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, a ports.TicketActivity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    a.ID,
		Timestamp:    a.At,
		Type:         a.RoutingKey(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx,
		p.exchange,     // exchange
		a.RoutingKey(), // routing key
		false,          // mandatory
		false,          // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Ping reports whether the broker connection is open.
func (p *AMQPPublisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}
