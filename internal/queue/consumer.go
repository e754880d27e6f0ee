package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultLogPath is where the consumer appends one line per event.
const DefaultLogPath = "logs/booking.log"

// Consumer reads booking events from the queue and appends them to a log
// file in a single-line, human-friendly format.
type Consumer struct {
	URL     string
	Queue   string
	LogPath string

	mu sync.Mutex // serializes file appends
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff when the broker is unreachable or the delivery channel closes.
// It returns ctx.Err() on shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Consumer) queueName() string {
	if c.Queue == "" {
		return DefaultQueueName
	}
	return c.Queue
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(c.queueName(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queueName(), "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				log.Printf("booking-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and appends it to the booking log.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.Reference == "" {
		return errors.New("event without type or reference")
	}
	path := c.LogPath
	if path == "" {
		path = DefaultLogPath
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

var eventTitles = map[string]string{
	EventBookingCreated:   "Booking created",
	EventBookingConfirmed: "Booking confirmed",
	EventBookingCancelled: "Booking cancelled",
	EventBookingCompleted: "Stay completed",
}

// FormatLine renders ev as one newline-terminated log line.
func FormatLine(ev BookingEvent) string {
	title, ok := eventTitles[ev.Type]
	if !ok {
		title = ev.Type
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | reference=%s | status=%s", ev.OccurredAt, title, ev.Reference, ev.Status)
	if ev.PreviousStatus != "" {
		fmt.Fprintf(&b, " | previous=%s", ev.PreviousStatus)
	}
	fmt.Fprintf(&b, " | room=%s (%s) | guest=%q <%s> | stay=%s..%s (%d nights) | total=%d cents\n",
		ev.RoomNumber, ev.RoomType, ev.GuestName, ev.GuestEmail, ev.CheckIn, ev.CheckOut, ev.Nights, ev.TotalPriceCents)
	return b.String()
}
