package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueueName is the durable queue carrying booking lifecycle events.
const DefaultQueueName = "booking.events"

// DefaultDialTimeout bounds connect plus AMQP handshake when the caller's
// context has no deadline.
const DefaultDialTimeout = 5 * time.Second

// Publisher publishes BookingEvents to a durable RabbitMQ queue.  The
// connection is dialled lazily on first use and re-dialled after a
// failure, so a broker that is down at startup does not stop the server.
// Messages are marked persistent.
//
// mu only guards the conn/ch fields.  Dialling and publishing happen
// outside it, so a stalled broker delays each caller by at most its own
// context deadline.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for the broker at url.  An empty queue
// name selects DefaultQueueName.
func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{url: url, queue: queue}
}

// channel returns an open channel, dialling and declaring the queue when
// needed.  Concurrent callers may dial at the same time; the first to
// finish installs its connection and the others close theirs.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.ch != nil && !p.ch.IsClosed() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	p.mu.Unlock()

	conn, ch, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		_ = ch.Close()
		_ = conn.Close()
		return p.ch, nil
	}
	p.closeLocked()
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	timeout := DefaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	if timeout <= 0 {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", context.DeadlineExceeded)
	}
	// DefaultDial applies the timeout to the TCP connect and the AMQP
	// handshake alike.
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	return conn, ch, nil
}

// Publish sends ev to the queue.  Errors are returned so the caller can log
// and carry on; the booking change itself is never rolled back.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}
	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.mu.Lock()
		if p.ch == ch {
			p.closeLocked()
		}
		p.mu.Unlock()
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
